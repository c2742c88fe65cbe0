package scanner

import (
	"context"
	"testing"

	"secscan-go/internal/models"
	"secscan-go/internal/severity"

	"github.com/stretchr/testify/assert"
)

func compliantPolicy() *PolicyInput {
	return &PolicyInput{
		PasswordPolicy: &PasswordPolicy{
			MinLength:           16,
			RequireSpecialChars: true,
			RequireNumbers:      true,
			MaxAgeDays:          60,
		},
		Encryption: &EncryptionPolicy{
			RequireTLS:    true,
			MinTLSVersion: "1.3",
			RequireAtRest: true,
		},
		AccessControl: &AccessControlPolicy{
			RequireMFA:         true,
			MaxSessionDuration: 8,
			RequireRBAC:        true,
		},
	}
}

func TestComplianceScanCleanPolicy(t *testing.T) {
	sc := NewComplianceScanner(compliantPolicy())

	result, err := sc.Scan(context.Background(), Target{ScanID: "scan-1"})

	assert.NoError(t, err)
	assert.Equal(t, models.ScanCompleted, result.Status)
	assert.Empty(t, result.Findings)
}

func TestComplianceScanViolations(t *testing.T) {
	testCases := []struct {
		name             string
		mutate           func(p *PolicyInput)
		expectedCategory string
		expectedSeverity severity.Severity
	}{
		{
			name:             "short password length",
			mutate:           func(p *PolicyInput) { p.PasswordPolicy.MinLength = 8 },
			expectedCategory: "password_policy",
			expectedSeverity: severity.High,
		},
		{
			name:             "special chars not required",
			mutate:           func(p *PolicyInput) { p.PasswordPolicy.RequireSpecialChars = false },
			expectedCategory: "password_policy",
			expectedSeverity: severity.Medium,
		},
		{
			name:             "numbers not required",
			mutate:           func(p *PolicyInput) { p.PasswordPolicy.RequireNumbers = false },
			expectedCategory: "password_policy",
			expectedSeverity: severity.Medium,
		},
		{
			name:             "rotation period too long",
			mutate:           func(p *PolicyInput) { p.PasswordPolicy.MaxAgeDays = 180 },
			expectedCategory: "password_policy",
			expectedSeverity: severity.Low,
		},
		{
			name:             "rotation disabled",
			mutate:           func(p *PolicyInput) { p.PasswordPolicy.MaxAgeDays = 0 },
			expectedCategory: "password_policy",
			expectedSeverity: severity.Low,
		},
		{
			name:             "tls not enforced",
			mutate:           func(p *PolicyInput) { p.Encryption.RequireTLS = false },
			expectedCategory: "encryption",
			expectedSeverity: severity.Critical,
		},
		{
			name:             "tls version too old",
			mutate:           func(p *PolicyInput) { p.Encryption.MinTLSVersion = "1.0" },
			expectedCategory: "encryption",
			expectedSeverity: severity.High,
		},
		{
			name:             "tls version unparsable",
			mutate:           func(p *PolicyInput) { p.Encryption.MinTLSVersion = "latest" },
			expectedCategory: "encryption",
			expectedSeverity: severity.High,
		},
		{
			name:             "no encryption at rest",
			mutate:           func(p *PolicyInput) { p.Encryption.RequireAtRest = false },
			expectedCategory: "encryption",
			expectedSeverity: severity.High,
		},
		{
			name:             "mfa not required",
			mutate:           func(p *PolicyInput) { p.AccessControl.RequireMFA = false },
			expectedCategory: "access_control",
			expectedSeverity: severity.Critical,
		},
		{
			name:             "rbac not required",
			mutate:           func(p *PolicyInput) { p.AccessControl.RequireRBAC = false },
			expectedCategory: "access_control",
			expectedSeverity: severity.High,
		},
		{
			name:             "session duration too long",
			mutate:           func(p *PolicyInput) { p.AccessControl.MaxSessionDuration = 24 },
			expectedCategory: "access_control",
			expectedSeverity: severity.Medium,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy := compliantPolicy()
			tc.mutate(policy)

			sc := NewComplianceScanner(policy)
			result, err := sc.Scan(context.Background(), Target{ScanID: "scan-1"})

			assert.NoError(t, err)
			assert.Len(t, result.Findings, 1)
			assert.Equal(t, tc.expectedCategory, result.Findings[0].Category)
			assert.Equal(t, tc.expectedSeverity, result.Findings[0].Severity)
			assert.NotEmpty(t, result.Findings[0].Recommendation)
		})
	}
}

func TestComplianceScanSkipsMissingSubPolicies(t *testing.T) {
	sc := NewComplianceScanner(&PolicyInput{
		// No TLS and no MFA, but neither sub-policy is configured.
		PasswordPolicy: &PasswordPolicy{
			MinLength:           16,
			RequireSpecialChars: true,
			RequireNumbers:      true,
			MaxAgeDays:          60,
		},
	})

	result, err := sc.Scan(context.Background(), Target{ScanID: "scan-1"})

	assert.NoError(t, err)
	assert.Empty(t, result.Findings)
}

func TestComplianceScanRepeatable(t *testing.T) {
	policy := compliantPolicy()
	policy.Encryption.RequireTLS = false
	policy.AccessControl.RequireMFA = false

	sc := NewComplianceScanner(policy)

	first, err := sc.Scan(context.Background(), Target{ScanID: "scan-1"})
	assert.NoError(t, err)
	second, err := sc.Scan(context.Background(), Target{ScanID: "scan-2"})
	assert.NoError(t, err)

	assert.Len(t, first.Findings, len(second.Findings))
	for i := range first.Findings {
		assert.Equal(t, first.Findings[i].Category, second.Findings[i].Category)
		assert.Equal(t, first.Findings[i].Severity, second.Findings[i].Severity)
		assert.Equal(t, first.Findings[i].Title, second.Findings[i].Title)
	}
}

func TestComplianceScanTargetPolicyOverride(t *testing.T) {
	sc := NewComplianceScanner(compliantPolicy())

	override := compliantPolicy()
	override.AccessControl.RequireMFA = false

	result, err := sc.Scan(context.Background(), Target{ScanID: "scan-1", Policy: override})

	assert.NoError(t, err)
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, severity.Critical, result.Findings[0].Severity)
}

func TestComplianceValidate(t *testing.T) {
	assert.NoError(t, NewComplianceScanner(compliantPolicy()).Validate(context.Background()))
	assert.ErrorIs(t, NewComplianceScanner(nil).Validate(context.Background()), ErrInvalidConfiguration)
}
