package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alterego/alterego/internal/types"
)

// DefaultProbeTimeout bounds each identity round-trip.
const DefaultProbeTimeout = 5 * time.Second

// DefaultPlaceholders are credential fragments left over from templates.
var DefaultPlaceholders = []string{"your_"}

// IdentityProber performs one minimal authenticated call against a service.
// Any returned error means the service is unreachable or rejected the
// credential.
type IdentityProber interface {
	Ping(ctx context.Context, credential string) error
}

// IdentityProberFunc adapts a function to IdentityProber.
type IdentityProberFunc func(ctx context.Context, credential string) error

// Ping calls f.
func (f IdentityProberFunc) Ping(ctx context.Context, credential string) error {
	return f(ctx, credential)
}

// ServiceConfig binds a service to its credential and prober.
type ServiceConfig struct {
	Name       string
	Credential string
	Prober     IdentityProber
}

// ServiceResult is the outcome for one service.
type ServiceResult struct {
	Name     string
	Status   types.ProbeStatus
	Err      error
	Duration time.Duration
}

// ConnectivityResult holds per-service outcomes in probe order.
type ConnectivityResult struct {
	Services []ServiceResult

	// OK is true iff no service is Disconnected
	OK bool

	Duration time.Duration
}

// Results maps service name to status.
func (r ConnectivityResult) Results() map[string]types.ProbeStatus {
	out := make(map[string]types.ProbeStatus, len(r.Services))
	for _, s := range r.Services {
		out[s.Name] = s.Status
	}
	return out
}

// Check returns the uniform view of the result.
func (r ConnectivityResult) Check() CheckResult {
	var findings []Finding
	connected, skipped := 0, 0
	for _, s := range r.Services {
		switch s.Status {
		case types.ProbeConnected:
			connected++
		case types.ProbeNotConfigured:
			skipped++
			findings = append(findings, Finding{
				Path:        s.Name,
				Category:    CategoryNotConfigured,
				Severity:    SeverityLow,
				Description: fmt.Sprintf("%s skipped (not configured)", s.Name),
			})
		case types.ProbeDisconnected:
			desc := fmt.Sprintf("%s disconnected or auth failed", s.Name)
			if s.Err != nil {
				desc = fmt.Sprintf("%s: %v", desc, s.Err)
			}
			findings = append(findings, Finding{
				Path:        s.Name,
				Category:    CategoryDisconnected,
				Severity:    SeverityMedium,
				Description: desc,
			})
		}
	}

	summary := fmt.Sprintf("%d connected, %d not configured", connected, skipped)
	if !r.OK {
		summary = fmt.Sprintf("%d of %d services disconnected", len(r.Services)-connected-skipped, len(r.Services))
	}

	return CheckResult{
		Name:     "Connectivity",
		Status:   statusFromBool(r.OK, skipped),
		Summary:  summary,
		Findings: findings,
		Duration: r.Duration,
	}
}

// ConnectivityProbe checks external services sequentially.
type ConnectivityProbe struct {
	// Timeout per round-trip; DefaultProbeTimeout when zero
	Timeout time.Duration

	// Placeholders mark template credentials; DefaultPlaceholders when nil
	Placeholders []string
}

// NewConnectivityProbe creates a probe with the given per-call timeout.
func NewConnectivityProbe(timeout time.Duration, placeholders []string) *ConnectivityProbe {
	return &ConnectivityProbe{Timeout: timeout, Placeholders: placeholders}
}

// IsPlaceholder reports whether the credential still holds template content.
func IsPlaceholder(credential string, placeholders []string) bool {
	if placeholders == nil {
		placeholders = DefaultPlaceholders
	}
	lower := strings.ToLower(credential)
	for _, p := range placeholders {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// IsConfigured reports whether the credential is present and real.
func (p *ConnectivityProbe) IsConfigured(credential string) bool {
	credential = strings.TrimSpace(credential)
	return credential != "" && !IsPlaceholder(credential, p.Placeholders)
}

// Probe checks each service once, in order. Unconfigured services are never
// contacted. Errors, timeouts and panics all collapse to Disconnected.
func (p *ConnectivityProbe) Probe(ctx context.Context, services []ServiceConfig) ConnectivityResult {
	start := time.Now()

	result := ConnectivityResult{OK: true}
	for _, svc := range services {
		sr := p.probeOne(ctx, svc)
		if sr.Status == types.ProbeDisconnected {
			result.OK = false
		}
		result.Services = append(result.Services, sr)
	}

	result.Duration = time.Since(start)
	return result
}

func (p *ConnectivityProbe) probeOne(ctx context.Context, svc ServiceConfig) (sr ServiceResult) {
	log := zap.L().With(zap.String("component", "health.connectivity"), zap.String("service", svc.Name))

	sr = ServiceResult{Name: svc.Name}
	if !p.IsConfigured(svc.Credential) || svc.Prober == nil {
		sr.Status = types.ProbeNotConfigured
		log.Debug("service not configured")
		return sr
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			sr.Status = types.ProbeDisconnected
			sr.Err = fmt.Errorf("prober panic: %v", r)
			log.Warn("prober panicked", zap.Any("panic", r))
		}
		sr.Duration = time.Since(start)
	}()

	if err := svc.Prober.Ping(callCtx, strings.TrimSpace(svc.Credential)); err != nil {
		sr.Status = types.ProbeDisconnected
		sr.Err = err
		log.Info("service disconnected", zap.Error(err))
		return sr
	}

	sr.Status = types.ProbeConnected
	return sr
}

// AuthScheme formats the Authorization header value for a credential.
type AuthScheme func(credential string) string

// BearerAuth sends "Bearer <credential>".
func BearerAuth(credential string) string { return "Bearer " + credential }

// RawAuth sends the credential as is.
func RawAuth(credential string) string { return credential }

// HTTPIdentityProber issues GET BaseURL+Path and expects 200.
type HTTPIdentityProber struct {
	BaseURL string
	Path    string
	Auth    AuthScheme
	Client  *http.Client
}

// NewGitHubProber probes GET /user with bearer authorization.
func NewGitHubProber(baseURL string) *HTTPIdentityProber {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &HTTPIdentityProber{BaseURL: baseURL, Path: "/user", Auth: BearerAuth}
}

// NewClickUpProber probes GET /user with the raw API key as authorization.
func NewClickUpProber(baseURL string) *HTTPIdentityProber {
	if baseURL == "" {
		baseURL = "https://api.clickup.com/api/v2"
	}
	return &HTTPIdentityProber{BaseURL: baseURL, Path: "/user", Auth: RawAuth}
}

// noRedirectClient treats a redirect as a failed identity call.
var noRedirectClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// Ping implements IdentityProber.
func (p *HTTPIdentityProber) Ping(ctx context.Context, credential string) error {
	client := p.Client
	if client == nil {
		client = noRedirectClient
	}
	auth := p.Auth
	if auth == nil {
		auth = BearerAuth
	}

	url := strings.TrimRight(p.BaseURL, "/") + p.Path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", auth(credential))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "alterego-fitness")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}
