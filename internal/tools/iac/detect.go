package iac

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	k8sMarkerRe       = regexp.MustCompile(`(?m)^apiVersion:\s*\S`)
	k8sKindMarkerRe   = regexp.MustCompile(`(?m)^kind:\s*\S`)
	k8sMetadataRe     = regexp.MustCompile(`(?m)^metadata:\s*$`)
	tfResourceRe      = regexp.MustCompile(`resource\s+"(aws|google|azurerm|gcp)_`)
	dockerfileFromRe  = regexp.MustCompile(`(?m)^FROM\s+\S`)
)

// DetectKind types a single IaC file by filename first, falling back to
// content sniffing (spec §4.8).
func DetectKind(path, content string) (Kind, bool) {
	base := filepath.Base(path)
	switch {
	case base == "Dockerfile" || strings.HasSuffix(base, ".dockerfile"):
		return Dockerfile, true
	case strings.HasSuffix(base, ".tf"):
		return Terraform, true
	case strings.HasSuffix(base, ".yaml") || strings.HasSuffix(base, ".yml"):
		if looksLikeKubernetes(content) {
			return Kubernetes, true
		}
	}

	switch {
	case dockerfileFromRe.MatchString(content) && !looksLikeKubernetes(content):
		return Dockerfile, true
	case looksLikeKubernetes(content):
		return Kubernetes, true
	case tfResourceRe.MatchString(content):
		return Terraform, true
	}
	return "", false
}

func looksLikeKubernetes(content string) bool {
	return k8sMarkerRe.MatchString(content) && k8sKindMarkerRe.MatchString(content) && k8sMetadataRe.MatchString(content)
}
