package iac

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/collegue/specmcp/internal/finding"
)

// ScanKubernetesDeep YAML-loads every document in content and applies the
// semantic checks of spec §4.8: privileged mode and missing resource
// limits per container on Pod specs, hostNetwork/hostPID on workload
// templates, and the NodePort range on Services.
func ScanKubernetesDeep(path, content string) []finding.Finding {
	var out []finding.Finding
	dec := yaml.NewDecoder(strings.NewReader(content))
	for {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			break
		}
		if doc == nil {
			continue
		}
		out = append(out, scanK8sDocument(path, doc)...)
	}
	return out
}

func scanK8sDocument(path string, doc map[string]any) []finding.Finding {
	kind, _ := doc["kind"].(string)
	var out []finding.Finding

	switch kind {
	case "Pod":
		if spec, ok := doc["spec"].(map[string]any); ok {
			out = append(out, scanPodSpec(path, spec)...)
		}
	case "Service":
		out = append(out, scanServiceSpec(path, doc)...)
	default:
		if spec, ok := podTemplateSpec(doc); ok {
			out = append(out, scanWorkloadTemplate(path, spec)...)
		}
	}
	return out
}

// podTemplateSpec finds spec.template.spec on Deployment/StatefulSet/
// DaemonSet/Job/ReplicaSet-shaped workload manifests.
func podTemplateSpec(doc map[string]any) (map[string]any, bool) {
	spec, ok := doc["spec"].(map[string]any)
	if !ok {
		return nil, false
	}
	tmpl, ok := spec["template"].(map[string]any)
	if !ok {
		return nil, false
	}
	podSpec, ok := tmpl["spec"].(map[string]any)
	return podSpec, ok
}

func scanWorkloadTemplate(path string, spec map[string]any) []finding.Finding {
	var out []finding.Finding
	if b, ok := spec["hostNetwork"].(bool); ok && b {
		out = append(out, finding.Finding{
			RuleID: "K8S-002", Severity: finding.High, File: path, Line: 1,
			Title: "hostNetwork enabled", Message: "workload template sets hostNetwork: true",
			Type: "presence", Engine: "iac_guardrails",
		})
	}
	if b, ok := spec["hostPID"].(bool); ok && b {
		out = append(out, finding.Finding{
			RuleID: "K8S-003", Severity: finding.High, File: path, Line: 1,
			Title: "hostPID enabled", Message: "workload template sets hostPID: true",
			Type: "presence", Engine: "iac_guardrails",
		})
	}
	out = append(out, scanPodSpec(path, spec)...)
	return out
}

func scanPodSpec(path string, spec map[string]any) []finding.Finding {
	var out []finding.Finding
	containers, _ := spec["containers"].([]any)
	for _, c := range containers {
		cm, ok := c.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, scanContainer(path, cm)...)
	}
	return out
}

func scanContainer(path string, c map[string]any) []finding.Finding {
	var out []finding.Finding
	name, _ := c["name"].(string)

	if sc, ok := c["securityContext"].(map[string]any); ok {
		if priv, ok := sc["privileged"].(bool); ok && priv {
			out = append(out, finding.Finding{
				RuleID: "K8S-001", Severity: finding.Critical, File: path, Line: 1,
				Title:   "Privileged container",
				Message: "container '" + name + "' runs with privileged: true",
				Type:    "presence", Engine: "iac_guardrails",
				Remediation: "Remove privileged:true and grant only the specific capabilities the workload needs",
			})
		}
	}

	resources, hasResources := c["resources"].(map[string]any)
	_, hasLimits := resources["limits"]
	if !hasResources || !hasLimits {
		out = append(out, finding.Finding{
			RuleID: "K8S-007", Severity: finding.Medium, File: path, Line: 1,
			Title:   "Missing resource limits",
			Message: "container '" + name + "' has no resources.limits block",
			Type:    "absence", Engine: "iac_guardrails",
			Remediation: "Set resources.limits.cpu and resources.limits.memory on every container",
		})
	}
	return out
}

func scanServiceSpec(path string, doc map[string]any) []finding.Finding {
	spec, ok := doc["spec"].(map[string]any)
	if !ok {
		return nil
	}
	if t, ok := spec["type"].(string); !ok || t != "NodePort" {
		return nil
	}
	ports, _ := spec["ports"].([]any)
	var out []finding.Finding
	for _, p := range ports {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		np, ok := toInt(pm["nodePort"])
		if !ok {
			continue
		}
		if np >= 30000 && np <= 32767 {
			out = append(out, finding.Finding{
				RuleID: "K8S-008", Severity: finding.Low, File: path, Line: 1,
				Title:   "NodePort in default range",
				Message: "service exposes nodePort in the default 30000-32767 range",
				Type:    "presence", Engine: "iac_guardrails",
			})
		}
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
