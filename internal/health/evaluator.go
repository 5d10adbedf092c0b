package health

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alterego/alterego/internal/config"
	"github.com/alterego/alterego/internal/types"
)

// Signals are the five check outcomes the verdict is computed from.
type Signals struct {
	Files        bool
	Integrity    bool
	Governance   bool
	Dependencies bool
	Connectivity bool

	// UnknownDocs is the number of decision records without a status
	UnknownDocs int
}

// Verdict folds signals into a HealthVerdict. Rows are evaluated top to
// bottom and the first match wins.
func Verdict(s Signals) types.HealthVerdict {
	switch {
	case s.Files && s.Integrity && s.Governance && s.Dependencies && s.Connectivity:
		return types.VerdictExcellent
	case s.Files && s.Dependencies && s.UnknownDocs == 0:
		return types.VerdictGood
	case s.Files && s.Dependencies:
		return types.VerdictFunctional
	default:
		return types.VerdictCritical
	}
}

// FitnessReport is the outcome of one evaluation.
type FitnessReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Essentials   EssentialFilesResult
	Artifacts    ArtifactScanResult
	Documents    DocumentScanResult
	Dependencies DependencyProbeResult
	Connectivity ConnectivityResult

	Signals Signals
	Verdict types.HealthVerdict
}

// Checks returns the five checks in evaluation order.
func (r *FitnessReport) Checks() []CheckResult {
	return []CheckResult{
		r.Essentials.Check(),
		r.Artifacts.Check(),
		r.Documents.Check(),
		r.Dependencies.Check(),
		r.Connectivity.Check(),
	}
}

// FitnessEvaluator runs every check over the current workspace state.
// It keeps no state between evaluations.
type FitnessEvaluator struct {
	Essentials *EssentialFilesCheck

	Artifacts *ArtifactIntegrityScanner
	BooksDir  string

	Documents *DocumentHealthScanner
	ADRDir    string
	Decoder   *TextDecoder

	Dependencies *DependencyProbe
	Descriptors  []DependencyDescriptor

	Connectivity *ConnectivityProbe
	Services     []ServiceConfig

	// Now is the clock, time.Now when nil
	Now func() time.Time
}

// Evaluate runs, in order: essential files, artifact integrity, document
// governance, dependencies, connectivity. It never fails; problems are
// reported as findings.
func (e *FitnessEvaluator) Evaluate(ctx context.Context) *FitnessReport {
	log := zap.L().With(zap.String("component", "health.evaluator"))

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	report := &FitnessReport{
		RunID:     uuid.New().String(),
		StartedAt: now(),
	}
	start := time.Now()

	report.Essentials = e.Essentials.Run()
	report.Artifacts = e.Artifacts.Scan(ctx, e.BooksDir)

	records, err := LoadDecisionRecords(ctx, e.ADRDir, e.Decoder)
	if err != nil {
		log.Warn("decision record enumeration stopped early", zap.Error(err))
	}
	report.Documents = e.Documents.Scan(records)

	report.Dependencies = e.Dependencies.Probe(ctx, e.Descriptors)
	report.Connectivity = e.Connectivity.Probe(ctx, e.Services)

	report.Signals = Signals{
		Files:        report.Essentials.OK,
		Integrity:    report.Artifacts.OK,
		Governance:   report.Documents.OK,
		Dependencies: report.Dependencies.OK(),
		Connectivity: report.Connectivity.OK,
		UnknownDocs:  report.Documents.UnknownCount(),
	}
	report.Verdict = Verdict(report.Signals)
	report.Duration = time.Since(start)

	log.Info("fitness evaluated",
		zap.String("run_id", report.RunID),
		zap.String("verdict", string(report.Verdict)),
		zap.Duration("duration", report.Duration))

	return report
}

// Service names used in reports and history.
const (
	ServiceGitHub    = "GitHub API"
	ServiceClickUp   = "ClickUp API"
	ServiceAWS       = "AWS API"
	ServiceAnthropic = "Anthropic API"
)

// NewFitnessEvaluator wires an evaluator from configuration. Credentials are
// taken from cfg only.
func NewFitnessEvaluator(cfg *config.Config) *FitnessEvaluator {
	descriptors := make([]DependencyDescriptor, 0, len(cfg.Fitness.Dependencies))
	for _, d := range cfg.Fitness.Dependencies {
		descriptors = append(descriptors, DependencyDescriptor{
			Kind:       types.DependencyKind(d.Kind),
			Capability: d.Capability,
			Name:       d.Name,
			Required:   d.Required,
			MinVersion: d.MinVersion,
		})
	}

	resolver := MultiResolver{
		types.KindPython: NewPythonModuleResolver(cfg.Root, cfg.Fitness.PythonPaths),
		types.KindExec:   ExecutableResolver{},
		types.KindGoMod:  NewGoModuleResolver(cfg.Path("go.mod")),
	}

	creds := cfg.Credentials
	services := []ServiceConfig{
		{Name: ServiceGitHub, Credential: creds.GitHubToken, Prober: NewGitHubProber(cfg.Connectivity.GitHubBaseURL)},
		{Name: ServiceClickUp, Credential: creds.ClickUpAPIKey, Prober: NewClickUpProber(cfg.Connectivity.ClickUpBaseURL)},
		{Name: ServiceAWS, Credential: creds.AWSAccessKeyID, Prober: NewSTSIdentityProber(creds.AWSSecretAccessKey, creds.AWSSessionToken, creds.AWSRegion)},
		{Name: ServiceAnthropic, Credential: creds.AnthropicAPIKey, Prober: NewAnthropicProber(cfg.Connectivity.AnthropicBaseURL)},
	}

	return &FitnessEvaluator{
		Essentials: &EssentialFilesCheck{
			Dir:   cfg.Path(cfg.Paths.ScriptsDir),
			Files: cfg.Fitness.EssentialScripts,
		},
		Artifacts:    &ArtifactIntegrityScanner{OversizeBytes: cfg.Fitness.OversizeBytes},
		BooksDir:     cfg.Path(cfg.Paths.BooksDir),
		Documents:    NewDocumentHealthScanner(),
		ADRDir:       cfg.Path(cfg.Paths.ADRDir),
		Decoder:      NewTextDecoder(cfg.Fitness.Encodings...),
		Dependencies: NewDependencyProbe(resolver),
		Descriptors:  descriptors,
		Connectivity: NewConnectivityProbe(time.Duration(cfg.Connectivity.TimeoutSecs)*time.Second, cfg.Connectivity.Placeholders),
		Services:     services,
	}
}
