package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegue/specmcp/internal/contract"
	"github.com/collegue/specmcp/internal/finding"
)

// TestScenario1_PythonManifest verifies spec §8 scenario 1 exactly.
func TestScenario1_PythonManifest(t *testing.T) {
	tool := New(nil, nil)
	args := map[string]any{
		"content":               "django==4.2.0\nrequests>=2.28\npycrypto==2.6.1\nrequest==1.0\n",
		"language":              "python",
		"check_existence":       false,
		"check_vulnerabilities": false,
	}

	result, err := tool.Core(&contract.ExecContext{}, args)
	require.NoError(t, err)

	findings := result["findings"].([]finding.Finding)
	var sawDeprecatedPycrypto, sawMaliciousRequest bool
	for _, f := range findings {
		if f.Type == "deprecated" && f.Severity == finding.Low {
			sawDeprecatedPycrypto = true
		}
		if f.Type == "malicious" && f.Severity == finding.Critical {
			sawMaliciousRequest = true
		}
	}
	assert.True(t, sawDeprecatedPycrypto, "expected a deprecated/low finding for pycrypto")
	assert.True(t, sawMaliciousRequest, "expected a malicious/critical finding for request")

	counts := result["counts"].(map[finding.Severity]int)
	assert.Equal(t, 1, counts[finding.Critical])
	assert.Equal(t, 1, counts[finding.Low])
	assert.False(t, result["valid"].(bool))
}

func TestParseRequirementsTxt(t *testing.T) {
	deps := parseRequirementsTxt("django==4.2.0\n# comment\n\nrequests>=2.28\n")
	require.Len(t, deps, 2)
	assert.Equal(t, "django", deps[0].Name)
	assert.Equal(t, "4.2.0", deps[0].Version)
}

func TestParsePackageJSON_UnionsDepsAndDevDeps(t *testing.T) {
	content := `{"dependencies": {"react": "18.0.0"}, "devDependencies": {"jest": "29.0.0"}}`
	deps := parsePackageJSON(content)
	require.Len(t, deps, 2)
}

func TestParseFullPackageLock_DropsUnnamedEntries(t *testing.T) {
	content := `{"lockfileVersion": 3, "packages": {
		"node_modules/left-pad": {"version": "1.3.0"},
		"node_modules/": {"version": "2.0.0"}
	}}`
	deps := parseFullPackageLock(content)
	require.Len(t, deps, 1)
	assert.Equal(t, "left-pad", deps[0].Name)
}

func TestClassifySeverity_PrefersDatabaseSpecific(t *testing.T) {
	d := osvDetail{}
	d.DatabaseSpecific.Severity = "CRITICAL"
	assert.Equal(t, finding.Critical, classifySeverity(d))
}

func TestClassifySeverity_FallsBackToCVSSBucket(t *testing.T) {
	d := osvDetail{}
	d.Severity = []struct {
		Type  string `json:"type"`
		Score string `json:"score"`
	}{{Type: "CVSS_V3", Score: "8.1"}}
	assert.Equal(t, finding.High, classifySeverity(d))
}

func TestDependencyGuard_ValidIffNoCriticalOrHigh(t *testing.T) {
	tool := New(nil, nil)
	result, err := tool.Core(&contract.ExecContext{}, map[string]any{
		"content": "django==4.2.0\n",
	})
	require.NoError(t, err)
	assert.True(t, result["valid"].(bool))
}
