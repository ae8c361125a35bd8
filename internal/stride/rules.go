package stride

import "threatforge/internal/domain"

// Rule is one STRIDE-per-element suggestion template. Element rules apply to the
// listed element kinds; flow rules apply to every data flow.
type Rule struct {
	Category    domain.StrideCategory
	Kinds       []domain.ElementKind
	Flow        bool
	Title       string
	Description string
	Severity    domain.Severity
}

// DefaultRules returns the built-in rule table. Element templates use {name};
// flow templates use {source} and {target}.
func DefaultRules() []Rule {
	process := []domain.ElementKind{domain.ElementProcess}
	store := []domain.ElementKind{domain.ElementDataStore}
	external := []domain.ElementKind{domain.ElementExternalEntity}

	return []Rule{
		{
			Category:    domain.StrideSpoofing,
			Kinds:       process,
			Title:       "Spoofing of {name}",
			Description: "An attacker may impersonate {name} to gain unauthorized access. Ensure authentication mechanisms verify the identity of callers.",
			Severity:    domain.SeverityHigh,
		},
		{
			Category:    domain.StrideTampering,
			Kinds:       process,
			Title:       "Tampering with {name}",
			Description: "An attacker may modify the behavior or inputs of {name}. Validate all inputs and ensure integrity checks are in place.",
			Severity:    domain.SeverityHigh,
		},
		{
			Category:    domain.StrideRepudiation,
			Kinds:       process,
			Title:       "Repudiation threat for {name}",
			Description: "{name} may perform actions without adequate logging. Implement audit logging to ensure all operations are traceable.",
			Severity:    domain.SeverityMedium,
		},
		{
			Category:    domain.StrideInformationDisclosure,
			Kinds:       process,
			Title:       "Information disclosure from {name}",
			Description: "{name} may leak sensitive information through error messages, logs, or side channels. Review outputs for data exposure.",
			Severity:    domain.SeverityMedium,
		},
		{
			Category:    domain.StrideDenialOfService,
			Kinds:       process,
			Title:       "Denial of service on {name}",
			Description: "An attacker may overwhelm {name} with excessive requests or malformed inputs. Implement rate limiting and input validation.",
			Severity:    domain.SeverityMedium,
		},
		{
			Category:    domain.StrideElevationOfPrivilege,
			Kinds:       process,
			Title:       "Elevation of privilege via {name}",
			Description: "An attacker may exploit {name} to gain unauthorized privileges. Apply least-privilege principles and validate authorization.",
			Severity:    domain.SeverityHigh,
		},
		{
			Category:    domain.StrideTampering,
			Kinds:       store,
			Title:       "Tampering with data in {name}",
			Description: "An attacker may modify data in {name}. Use access controls, integrity constraints, and audit trails to detect unauthorized changes.",
			Severity:    domain.SeverityHigh,
		},
		{
			Category:    domain.StrideInformationDisclosure,
			Kinds:       store,
			Title:       "Information disclosure from {name}",
			Description: "Sensitive data stored in {name} may be exposed to unauthorized users. Apply encryption at rest and strict access controls.",
			Severity:    domain.SeverityHigh,
		},
		{
			Category:    domain.StrideDenialOfService,
			Kinds:       store,
			Title:       "Denial of service on {name}",
			Description: "An attacker may corrupt or exhaust {name} to disrupt service. Implement backups, storage quotas, and connection limits.",
			Severity:    domain.SeverityMedium,
		},
		{
			Category:    domain.StrideSpoofing,
			Kinds:       external,
			Title:       "Spoofing of {name}",
			Description: "An attacker may impersonate {name}. Verify the identity of external actors through authentication and certificate validation.",
			Severity:    domain.SeverityHigh,
		},
		{
			Category:    domain.StrideRepudiation,
			Kinds:       external,
			Title:       "Repudiation by {name}",
			Description: "{name} may deny having performed an action. Implement non-repudiation mechanisms such as digital signatures or audit logs.",
			Severity:    domain.SeverityMedium,
		},
		{
			Category:    domain.StrideTampering,
			Flow:        true,
			Title:       "Tampering with data flow between {source} and {target}",
			Description: "Data in transit between {source} and {target} may be modified by an attacker. Use TLS/encryption and message integrity verification.",
			Severity:    domain.SeverityHigh,
		},
		{
			Category:    domain.StrideInformationDisclosure,
			Flow:        true,
			Title:       "Information disclosure on flow between {source} and {target}",
			Description: "Sensitive data flowing between {source} and {target} may be intercepted. Ensure encryption in transit and minimize data exposure.",
			Severity:    domain.SeverityHigh,
		},
		{
			Category:    domain.StrideDenialOfService,
			Flow:        true,
			Title:       "Denial of service on flow between {source} and {target}",
			Description: "The communication channel between {source} and {target} may be disrupted. Implement redundancy, timeouts, and retry logic.",
			Severity:    domain.SeverityMedium,
		},
	}
}
