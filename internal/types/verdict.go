package types

// HealthVerdict is the ordinal outcome of a fitness evaluation.
// Excellent is the best grade, Critical the worst.
type HealthVerdict string

const (
	VerdictExcellent  HealthVerdict = "excellent"
	VerdictGood       HealthVerdict = "good"
	VerdictFunctional HealthVerdict = "functional"
	VerdictCritical   HealthVerdict = "critical"
)

// IsValid checks if the verdict value is valid
func (v HealthVerdict) IsValid() bool {
	switch v {
	case VerdictExcellent, VerdictGood, VerdictFunctional, VerdictCritical:
		return true
	}
	return false
}

// Rank orders verdicts so that a higher rank is healthier.
// Unrecognized values rank below Critical.
func (v HealthVerdict) Rank() int {
	switch v {
	case VerdictExcellent:
		return 3
	case VerdictGood:
		return 2
	case VerdictFunctional:
		return 1
	case VerdictCritical:
		return 0
	}
	return -1
}

// Description returns the one-line meaning of the verdict for reports
func (v HealthVerdict) Description() string {
	switch v {
	case VerdictExcellent:
		return "Production-ready"
	case VerdictGood:
		return "Functional but needs polish"
	case VerdictFunctional:
		return "Infrastructure OK, governance lagging"
	case VerdictCritical:
		return "Principles violated"
	}
	return "Unknown verdict"
}

// CheckStatus is the outcome of a single fitness check.
// Partial means the check passed with advisory findings.
type CheckStatus string

const (
	CheckPass    CheckStatus = "pass"
	CheckPartial CheckStatus = "partial"
	CheckFail    CheckStatus = "fail"
)

// Passed reports whether the status counts as passing for verdict purposes.
func (s CheckStatus) Passed() bool {
	return s == CheckPass || s == CheckPartial
}

// ProbeStatus is the connectivity outcome for one external service
type ProbeStatus string

const (
	ProbeConnected     ProbeStatus = "connected"
	ProbeDisconnected  ProbeStatus = "disconnected"
	ProbeNotConfigured ProbeStatus = "not_configured"
)

// Availability is the resolution state of a dependency
type Availability string

const (
	Available Availability = "available"
	Missing   Availability = "missing"
)
