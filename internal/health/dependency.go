package health

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alterego/alterego/internal/types"
)

// DependencyDescriptor names one capability to probe.
type DependencyDescriptor struct {
	Kind       types.DependencyKind
	Capability string // e.g. "google.cloud.vision", "git", "golang.org/x/mod"
	Name       string // display name
	Required   bool
	MinVersion string // gomod only
}

// DisplayName falls back to the capability when no name is set.
func (d DependencyDescriptor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Capability
}

// Resolver answers whether a capability exists in the local environment.
// Implementations must only inspect, never import or execute.
type Resolver interface {
	Resolve(ctx context.Context, dep DependencyDescriptor) (bool, error)
}

// DependencyProbeResult holds per-dependency availability.
type DependencyProbeResult struct {
	// Availability maps display name to Available or Missing
	Availability map[string]types.Availability

	// Order lists display names in probe order
	Order []string

	// Missing lists missing display names in probe order
	Missing []string

	// MissingRequired is the subset of Missing that is required
	MissingRequired []string

	// Blocking is true when any required dependency is missing
	Blocking bool

	Duration time.Duration
}

// OK reports whether the probe passes. Optional gaps do not fail it.
func (r DependencyProbeResult) OK() bool {
	return !r.Blocking
}

// Status is pass, partial for optional gaps, or fail when blocking.
func (r DependencyProbeResult) Status() types.CheckStatus {
	return statusFromBool(!r.Blocking, len(r.Missing))
}

// Check returns the uniform view of the result.
func (r DependencyProbeResult) Check() CheckResult {
	required := make(map[string]bool, len(r.MissingRequired))
	for _, name := range r.MissingRequired {
		required[name] = true
	}

	var findings []Finding
	for _, name := range r.Missing {
		severity := SeverityLow
		desc := fmt.Sprintf("optional dependency %s is missing", name)
		if required[name] {
			severity = SeverityHigh
			desc = fmt.Sprintf("required dependency %s is missing", name)
		}
		findings = append(findings, Finding{
			Path:        name,
			Category:    CategoryMissingDependency,
			Severity:    severity,
			Description: desc,
		})
	}

	var summary string
	switch {
	case r.Blocking:
		summary = fmt.Sprintf("%d required dependencies missing", len(r.MissingRequired))
	case len(r.Missing) > 0:
		summary = fmt.Sprintf("optional dependencies missing (%d of %d)", len(r.Missing), len(r.Order))
	default:
		summary = fmt.Sprintf("all %d dependencies available", len(r.Order))
	}

	return CheckResult{
		Name:     "Dependencies",
		Status:   r.Status(),
		Summary:  summary,
		Findings: findings,
		Duration: r.Duration,
	}
}

// DependencyProbe resolves descriptors through a Resolver.
type DependencyProbe struct {
	Resolver Resolver
}

// NewDependencyProbe creates a probe backed by resolver.
func NewDependencyProbe(resolver Resolver) *DependencyProbe {
	return &DependencyProbe{Resolver: resolver}
}

// Probe resolves every descriptor in order. A resolver error is logged and
// counts as Missing.
func (p *DependencyProbe) Probe(ctx context.Context, deps []DependencyDescriptor) DependencyProbeResult {
	start := time.Now()
	log := zap.L().With(zap.String("component", "health.dependencies"))

	result := DependencyProbeResult{
		Availability: make(map[string]types.Availability, len(deps)),
	}

	for _, dep := range deps {
		name := dep.DisplayName()

		ok, err := p.Resolver.Resolve(ctx, dep)
		if err != nil {
			log.Warn("dependency resolution failed",
				zap.String("dependency", name),
				zap.String("kind", string(dep.Kind)),
				zap.Error(err))
			ok = false
		}

		result.Order = append(result.Order, name)
		if ok {
			result.Availability[name] = types.Available
			continue
		}

		result.Availability[name] = types.Missing
		result.Missing = append(result.Missing, name)
		if dep.Required {
			result.MissingRequired = append(result.MissingRequired, name)
		}
	}

	result.Blocking = len(result.MissingRequired) > 0
	result.Duration = time.Since(start)
	return result
}
