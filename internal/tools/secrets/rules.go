// Package secrets implements the Secret Scanner of spec §4.6: a fixed
// table of regex detectors applied to in-memory content, a single file,
// or a directory walk.
package secrets

import (
	"regexp"

	"github.com/collegue/specmcp/internal/finding"
)

// Rule is a compiled secret-detection rule.
type Rule struct {
	ID             string
	Title          string
	Severity       finding.Severity
	Remediation    string
	Pattern        *regexp.Regexp
}

// rules is the ~30-entry detector table (spec §4.6), ported as data. Each
// pattern captures the secret value in group 1 when possible so it can be
// masked independently of its surrounding text.
var rules = []Rule{
	{"aws_access_key", "AWS Access Key ID", finding.Critical, "Revoke the key in IAM and rotate credentials", regexp.MustCompile(`\b(AKIA[0-9A-Z]{16})\b`)},
	{"aws_secret_key", "AWS Secret Access Key", finding.Critical, "Revoke the key in IAM and rotate credentials", regexp.MustCompile(`(?i)aws_secret_access_key\s*[:=]\s*['"]?([A-Za-z0-9/+=]{40})['"]?`)},
	{"gcp_api_key", "GCP API Key", finding.High, "Restrict or regenerate the key in Google Cloud Console", regexp.MustCompile(`\b(AIza[0-9A-Za-z\-_]{35})\b`)},
	{"gcp_service_account", "GCP Service Account Private Key", finding.Critical, "Revoke the service account key", regexp.MustCompile(`"type"\s*:\s*"service_account"`)},
	{"azure_storage_key", "Azure Storage Account Key", finding.High, "Rotate the storage account key", regexp.MustCompile(`(?i)AccountKey=([A-Za-z0-9+/=]{88})`)},
	{"openai_api_key", "OpenAI API Key", finding.Critical, "Revoke the key at platform.openai.com", regexp.MustCompile(`\b(sk-[A-Za-z0-9]{16,})\b`)},
	{"anthropic_api_key", "Anthropic API Key", finding.Critical, "Revoke the key in the Anthropic console", regexp.MustCompile(`\b(sk-ant-[A-Za-z0-9\-_]{20,})\b`)},
	{"openrouter_api_key", "OpenRouter API Key", finding.High, "Revoke the key at openrouter.ai", regexp.MustCompile(`\b(sk-or-[A-Za-z0-9\-_]{20,})\b`)},
	{"github_token", "GitHub Token", finding.High, "Revoke the token in GitHub settings", regexp.MustCompile(`\b(gh[pousr]_[A-Za-z0-9]{36,})\b`)},
	{"gitlab_token", "GitLab Token", finding.High, "Revoke the token in GitLab settings", regexp.MustCompile(`\b(glpat-[A-Za-z0-9\-_]{20,})\b`)},
	{"postgres_conn_string", "Postgres Connection String", finding.High, "Rotate the database credentials", regexp.MustCompile(`postgres(?:ql)?://[^:]+:([^@]+)@`)},
	{"mysql_conn_string", "MySQL Connection String", finding.High, "Rotate the database credentials", regexp.MustCompile(`mysql://[^:]+:([^@]+)@`)},
	{"mongodb_conn_string", "MongoDB Connection String", finding.High, "Rotate the database credentials", regexp.MustCompile(`mongodb(?:\+srv)?://[^:]+:([^@]+)@`)},
	{"redis_conn_string", "Redis Connection String", finding.Medium, "Rotate the Redis password", regexp.MustCompile(`redis://[^:]*:([^@]+)@`)},
	{"jwt", "JWT", finding.Medium, "Invalidate and reissue the token", regexp.MustCompile(`\b(eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+)\b`)},
	{"bearer_token", "Bearer Token", finding.Medium, "Invalidate and reissue the token", regexp.MustCompile(`(?i)bearer\s+([A-Za-z0-9\-_.]{20,})`)},
	{"pem_private_key", "PEM Private Key", finding.Critical, "Rotate the private key immediately", regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH )?PRIVATE KEY-----`)},
	{"stripe_key", "Stripe API Key", finding.Critical, "Revoke the key in the Stripe dashboard", regexp.MustCompile(`\b((?:sk|rk)_(?:live|test)_[A-Za-z0-9]{16,})\b`)},
	{"slack_token", "Slack Token", finding.High, "Revoke the token in Slack app settings", regexp.MustCompile(`\b(xox[baprs]-[A-Za-z0-9-]{10,})\b`)},
	{"sendgrid_key", "SendGrid API Key", finding.High, "Revoke the key in SendGrid settings", regexp.MustCompile(`\b(SG\.[A-Za-z0-9_\-]{16,}\.[A-Za-z0-9_\-]{16,})\b`)},
	{"twilio_key", "Twilio API Key", finding.High, "Revoke the key in the Twilio console", regexp.MustCompile(`\b(SK[a-f0-9]{32})\b`)},
	{"npm_token", "NPM Token", finding.High, "Revoke the token with npm token revoke", regexp.MustCompile(`\b(npm_[A-Za-z0-9]{36})\b`)},
	{"generic_password_assignment", "Generic Password Assignment", finding.Medium, "Move the value to a secrets manager or environment variable", regexp.MustCompile(`(?i)(?:password|passwd|pwd)\s*[:=]\s*['"]([^'"\s]{4,})['"]`)},
	{"generic_token_assignment", "Generic Token Assignment", finding.Medium, "Move the value to a secrets manager or environment variable", regexp.MustCompile(`(?i)(?:token|secret|api_key|apikey)\s*[:=]\s*['"]([^'"\s]{8,})['"]`)},
	{"basic_auth_url", "Basic Auth Credentials in URL", finding.Medium, "Remove credentials from the URL", regexp.MustCompile(`https?://[^:/\s]+:([^@/\s]+)@`)},
	{"private_ssh_key_passphrase", "SSH Key Passphrase Assignment", finding.Medium, "Move the passphrase to a secrets manager", regexp.MustCompile(`(?i)ssh_passphrase\s*[:=]\s*['"]([^'"\s]{4,})['"]`)},
	{"heroku_api_key", "Heroku API Key", finding.High, "Regenerate the key in Heroku account settings", regexp.MustCompile(`(?i)heroku[_-]?api[_-]?key\s*[:=]\s*['"]([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})['"]`)},
	{"firebase_key", "Firebase Cloud Messaging Key", finding.High, "Regenerate the server key in the Firebase console", regexp.MustCompile(`\b(AAAA[A-Za-z0-9_\-]{7}:[A-Za-z0-9_\-]{140,})\b`)},
	{"digitalocean_token", "DigitalOcean Personal Access Token", finding.High, "Revoke the token in the DigitalOcean control panel", regexp.MustCompile(`\b(dop_v1_[a-f0-9]{64})\b`)},
	{"generic_secret_variable", "Generic Secret-Named Variable", finding.Low, "Confirm this value is not a live credential", regexp.MustCompile(`(?i)\b[A-Z_]*SECRET[A-Z_]*\s*[:=]\s*['"]([^'"\s]{6,})['"]`)},
}

// Rules returns the compiled detector table.
func Rules() []Rule {
	return rules
}
