package scanner

import (
	"context"
	"fmt"
	"time"

	"secscan-go/internal/helper"
	"secscan-go/internal/models"
	"secscan-go/internal/severity"

	"golang.org/x/mod/semver"
)

const minTLSVersion = "1.2"

// PolicyInput is the recognized compliance configuration. Sub-policies left
// nil are not checked; only what is present gets validated.
type PolicyInput struct {
	PasswordPolicy *PasswordPolicy      `json:"password_policy,omitempty" mapstructure:"password_policy" yaml:"password_policy,omitempty"`
	Encryption     *EncryptionPolicy    `json:"encryption,omitempty" mapstructure:"encryption" yaml:"encryption,omitempty"`
	AccessControl  *AccessControlPolicy `json:"access_control,omitempty" mapstructure:"access_control" yaml:"access_control,omitempty"`
}

type PasswordPolicy struct {
	MinLength           int  `json:"min_length" mapstructure:"min_length" yaml:"min_length"`
	RequireSpecialChars bool `json:"require_special_chars" mapstructure:"require_special_chars" yaml:"require_special_chars"`
	RequireNumbers      bool `json:"require_numbers" mapstructure:"require_numbers" yaml:"require_numbers"`
	MaxAgeDays          int  `json:"max_age_days" mapstructure:"max_age_days" yaml:"max_age_days"`
}

type EncryptionPolicy struct {
	RequireTLS    bool   `json:"require_tls" mapstructure:"require_tls" yaml:"require_tls"`
	MinTLSVersion string `json:"min_tls_version" mapstructure:"min_tls_version" yaml:"min_tls_version"`
	RequireAtRest bool   `json:"require_at_rest" mapstructure:"require_at_rest" yaml:"require_at_rest"`
}

type AccessControlPolicy struct {
	RequireMFA         bool `json:"require_mfa" mapstructure:"require_mfa" yaml:"require_mfa"`
	MaxSessionDuration int  `json:"max_session_duration" mapstructure:"max_session_duration" yaml:"max_session_duration"`
	RequireRBAC        bool `json:"require_rbac" mapstructure:"require_rbac" yaml:"require_rbac"`
}

// ComplianceScanner compares the configured policy against the baseline
// rules. Each rule carries a fixed severity.
type ComplianceScanner struct {
	policy *PolicyInput
}

func NewComplianceScanner(policy *PolicyInput) *ComplianceScanner {
	return &ComplianceScanner{policy: policy}
}

func (s *ComplianceScanner) Type() ScanType {
	return TypeCompliance
}

func (s *ComplianceScanner) Validate(ctx context.Context) error {
	if s.policy == nil {
		return fmt.Errorf("%w: no compliance policy configured", ErrInvalidConfiguration)
	}
	return nil
}

func (s *ComplianceScanner) Scan(ctx context.Context, target Target) (*models.ScanResult, error) {
	result := &models.ScanResult{
		ScanID:    target.ScanID,
		ScanType:  string(TypeCompliance),
		ProjectID: target.ProjectID,
		StartedAt: time.Now().UTC(),
	}

	policy := s.policy
	if target.Policy != nil {
		policy = target.Policy
	}

	var findings []models.Finding
	if policy.PasswordPolicy != nil {
		findings = append(findings, checkPasswordPolicy(policy.PasswordPolicy)...)
	}
	if policy.Encryption != nil {
		findings = append(findings, checkEncryption(policy.Encryption)...)
	}
	if policy.AccessControl != nil {
		findings = append(findings, checkAccessControl(policy.AccessControl)...)
	}

	result.Complete(findings)
	return result, nil
}

func (s *ComplianceScanner) Summarize(result *models.ScanResult) Summary {
	return summarize(result)
}

func checkPasswordPolicy(p *PasswordPolicy) []models.Finding {
	var findings []models.Finding

	if p.MinLength < 12 {
		findings = append(findings, violation(
			"password_policy",
			severity.High,
			"Password minimum length too short",
			fmt.Sprintf("Configured minimum password length is %d, required is at least 12", p.MinLength),
			"Set min_length to 12 or higher",
		))
	}

	if !p.RequireSpecialChars {
		findings = append(findings, violation(
			"password_policy",
			severity.Medium,
			"Special characters not required in passwords",
			"Password policy does not require special characters",
			"Enable require_special_chars",
		))
	}

	if !p.RequireNumbers {
		findings = append(findings, violation(
			"password_policy",
			severity.Medium,
			"Numbers not required in passwords",
			"Password policy does not require numeric characters",
			"Enable require_numbers",
		))
	}

	if p.MaxAgeDays <= 0 || p.MaxAgeDays > 90 {
		findings = append(findings, violation(
			"password_policy",
			severity.Low,
			"Password rotation period too long",
			fmt.Sprintf("Configured maximum password age is %d days, required is 90 or less", p.MaxAgeDays),
			"Set max_age_days to 90 or less",
		))
	}

	return findings
}

func checkEncryption(p *EncryptionPolicy) []models.Finding {
	var findings []models.Finding

	if !p.RequireTLS {
		findings = append(findings, violation(
			"encryption",
			severity.Critical,
			"TLS not enforced",
			"Encryption policy does not enforce TLS for data in transit",
			"Enable require_tls",
		))
	}

	if p.RequireTLS && belowMinTLS(p.MinTLSVersion) {
		findings = append(findings, violation(
			"encryption",
			severity.High,
			"TLS version below minimum",
			fmt.Sprintf("Configured minimum TLS version %q is below %s", p.MinTLSVersion, minTLSVersion),
			fmt.Sprintf("Set min_tls_version to %s or higher", minTLSVersion),
		))
	}

	if !p.RequireAtRest {
		findings = append(findings, violation(
			"encryption",
			severity.High,
			"Encryption at rest not enforced",
			"Encryption policy does not enforce encryption of data at rest",
			"Enable require_at_rest",
		))
	}

	return findings
}

func checkAccessControl(p *AccessControlPolicy) []models.Finding {
	var findings []models.Finding

	if !p.RequireMFA {
		findings = append(findings, violation(
			"access_control",
			severity.Critical,
			"Multi-factor authentication not required",
			"Access control policy does not require MFA",
			"Enable require_mfa",
		))
	}

	if !p.RequireRBAC {
		findings = append(findings, violation(
			"access_control",
			severity.High,
			"Role-based access control not required",
			"Access control policy does not require RBAC",
			"Enable require_rbac",
		))
	}

	if p.MaxSessionDuration <= 0 || p.MaxSessionDuration > 12 {
		findings = append(findings, violation(
			"access_control",
			severity.Medium,
			"Session duration too long",
			fmt.Sprintf("Configured maximum session duration is %d hours, required is 12 or less", p.MaxSessionDuration),
			"Set max_session_duration to 12 or less",
		))
	}

	return findings
}

// belowMinTLS reports whether the configured version is weaker than the
// baseline. Unparsable versions count as weaker.
func belowMinTLS(version string) bool {
	v := canonicalVersion(version)
	if !semver.IsValid(v) {
		return true
	}
	return semver.Compare(v, canonicalVersion(minTLSVersion)) < 0
}

func canonicalVersion(version string) string {
	if len(version) > 0 && version[0] == 'v' {
		return version
	}
	return "v" + version
}

func violation(category string, sev severity.Severity, title, description, recommendation string) models.Finding {
	// Rule severities are fixed constants, so construction cannot fail here.
	f, _ := models.NewFinding(
		"CMP-"+helper.GenerateRandomID(),
		sev,
		category,
		title,
		description,
		category,
		recommendation,
	)
	return f
}
