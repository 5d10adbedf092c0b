package health

import (
	"time"

	"github.com/alterego/alterego/internal/types"
)

// CheckResult is the uniform view of one fitness check, used for rendering
// and for the run history.
type CheckResult struct {
	// Name is the human-readable check name
	Name string

	// Status is pass, partial (pass with advisories) or fail
	Status types.CheckStatus

	// Summary is a one-line description of the outcome
	Summary string

	// Findings itemize what the check observed
	Findings []Finding

	// Duration of the check
	Duration time.Duration
}

// Finding is one itemized observation from a check.
type Finding struct {
	// Path of the file involved, if any
	Path string

	// Category, e.g. "missing_script", "missing_index", "oversized",
	// "unknown_status", "missing_dependency", "disconnected"
	Category string

	// Severity is "low" (advisory), "medium" or "high" (blocking)
	Severity string

	// Description for console output
	Description string
}

// Finding categories.
const (
	CategoryMissingScript     = "missing_script"
	CategoryMissingIndex      = "missing_index"
	CategoryOversized         = "oversized"
	CategoryUnknownStatus     = "unknown_status"
	CategoryMissingDependency = "missing_dependency"
	CategoryDisconnected      = "disconnected"
	CategoryNotConfigured     = "not_configured"
)

// Finding severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// statusFromBool maps a pass/fail boolean onto a CheckStatus, downgrading a
// pass to partial when advisories exist.
func statusFromBool(ok bool, advisories int) types.CheckStatus {
	switch {
	case !ok:
		return types.CheckFail
	case advisories > 0:
		return types.CheckPartial
	default:
		return types.CheckPass
	}
}
