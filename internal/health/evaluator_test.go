package health

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alterego/alterego/internal/config"
	"github.com/alterego/alterego/internal/types"
)

func TestVerdict_Table(t *testing.T) {
	all := Signals{Files: true, Integrity: true, Governance: true, Dependencies: true, Connectivity: true}

	tests := []struct {
		name   string
		signal func(s Signals) Signals
		want   types.HealthVerdict
	}{
		{"all pass", func(s Signals) Signals { return s }, types.VerdictExcellent},
		{"connectivity fail", func(s Signals) Signals { s.Connectivity = false; return s }, types.VerdictGood},
		{"integrity fail", func(s Signals) Signals { s.Integrity = false; return s }, types.VerdictGood},
		{"governance fail", func(s Signals) Signals {
			s.Governance = false
			s.UnknownDocs = 2
			return s
		}, types.VerdictFunctional},
		{"governance and connectivity fail", func(s Signals) Signals {
			s.Governance = false
			s.Connectivity = false
			s.UnknownDocs = 1
			return s
		}, types.VerdictFunctional},
		{"dependencies fail", func(s Signals) Signals { s.Dependencies = false; return s }, types.VerdictCritical},
		{"files fail", func(s Signals) Signals { s.Files = false; return s }, types.VerdictCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verdict(tt.signal(all)))
		})
	}
}

func TestVerdict_FilesFailIsAlwaysCritical(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		s := Signals{
			Files:        false,
			Integrity:    mask&1 != 0,
			Governance:   mask&2 != 0,
			Dependencies: mask&4 != 0,
			Connectivity: mask&8 != 0,
		}
		assert.Equal(t, types.VerdictCritical, Verdict(s), "%+v", s)
	}
}

// workspace lays out a minimal healthy workspace and returns an evaluator
// over it with fake dependency and service probes.
func workspace(t *testing.T) (string, *FitnessEvaluator) {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "scripts", "patrol", "clickup_adapter.py"), nil)
	writeFile(t, filepath.Join(root, "knowledge", "books", "ddd.md"), []byte("# DDD"))
	writeFile(t, filepath.Join(root, "knowledge", "books", "ddd_page_index.json"), []byte("{}"))
	writeFile(t, filepath.Join(root, "docs", "adr", "0001-start.md"), []byte("Status: Accepted"))

	e := &FitnessEvaluator{
		Essentials:   &EssentialFilesCheck{Dir: filepath.Join(root, "scripts"), Files: []string{"patrol/clickup_adapter.py"}},
		Artifacts:    NewArtifactIntegrityScanner(),
		BooksDir:     filepath.Join(root, "knowledge", "books"),
		Documents:    NewDocumentHealthScanner(),
		ADRDir:       filepath.Join(root, "docs", "adr"),
		Decoder:      NewTextDecoder("shift_jis"),
		Dependencies: NewDependencyProbe(&fakeResolver{available: map[string]bool{"requests": true}}),
		Descriptors:  []DependencyDescriptor{{Kind: types.KindPython, Capability: "requests", Required: true}},
		Connectivity: NewConnectivityProbe(time.Second, nil),
		Services: []ServiceConfig{
			{Name: ServiceGitHub, Credential: "ghp_x", Prober: &countingProber{}},
			{Name: ServiceClickUp, Credential: "your_clickup_api_key", Prober: &countingProber{}},
		},
		Now: func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	return root, e
}

func TestFitnessEvaluator_Excellent(t *testing.T) {
	_, e := workspace(t)

	report := e.Evaluate(context.Background())

	assert.Equal(t, types.VerdictExcellent, report.Verdict)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), report.StartedAt)
	assert.Equal(t, 1, report.Documents.Counts[types.TagAccepted])
	assert.Len(t, report.Checks(), 5)
}

func TestFitnessEvaluator_ConnectivityFailIsGood(t *testing.T) {
	_, e := workspace(t)
	e.Services[0].Prober = &countingProber{err: assert.AnError}

	report := e.Evaluate(context.Background())

	assert.False(t, report.Signals.Connectivity)
	assert.Equal(t, types.VerdictGood, report.Verdict)
}

func TestFitnessEvaluator_UnknownDocsIsFunctional(t *testing.T) {
	root, e := workspace(t)
	writeFile(t, filepath.Join(root, "docs", "adr", "0002-draft.md"), []byte("todo"))

	report := e.Evaluate(context.Background())

	assert.Equal(t, 1, report.Signals.UnknownDocs)
	assert.Equal(t, types.VerdictFunctional, report.Verdict)
}

func TestFitnessEvaluator_MissingScriptIsCritical(t *testing.T) {
	_, e := workspace(t)
	e.Essentials.Files = append(e.Essentials.Files, "analyze/analyze_thoughts.py")

	report := e.Evaluate(context.Background())

	assert.False(t, report.Signals.Files)
	assert.Equal(t, types.VerdictCritical, report.Verdict)
}

func TestFitnessEvaluator_Idempotent(t *testing.T) {
	_, e := workspace(t)

	first := e.Evaluate(context.Background())
	second := e.Evaluate(context.Background())

	assert.Equal(t, first.Signals, second.Signals)
	assert.Equal(t, first.Documents.Counts, second.Documents.Counts)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestNewFitnessEvaluator_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Root = t.TempDir()
	cfg.Credentials.GitHubToken = "your_github_token"

	e := NewFitnessEvaluator(cfg)

	assert.Equal(t, filepath.Join(cfg.Root, "docs", "adr"), e.ADRDir)
	assert.Equal(t, filepath.Join(cfg.Root, "knowledge", "books"), e.BooksDir)
	assert.Len(t, e.Descriptors, len(cfg.Fitness.Dependencies))
	require.Len(t, e.Services, 4)
	assert.Equal(t, ServiceGitHub, e.Services[0].Name)
	assert.Equal(t, 5*time.Second, e.Connectivity.Timeout)

	// Nothing is configured, so no service is contacted
	result := e.Connectivity.Probe(context.Background(), e.Services)
	for _, s := range result.Services {
		assert.Equal(t, types.ProbeNotConfigured, s.Status, s.Name)
	}
}

func TestRenderReport(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	root, e := workspace(t)
	writeFile(t, filepath.Join(root, "docs", "adr", "0002-draft.md"), []byte("todo"))
	report := e.Evaluate(context.Background())

	var buf bytes.Buffer
	RenderReport(&buf, report, true)
	out := buf.String()

	assert.Contains(t, out, "[1/5] Essential files")
	assert.Contains(t, out, "[5/5] Connectivity")
	assert.Contains(t, out, "0002-draft.md has no recognizable status")
	assert.Regexp(t, `Unknown\s+1\n`, out)
	assert.Contains(t, out, "ClickUp API skipped (not configured)")
	assert.Contains(t, out, "SYSTEM HEALTH: FUNCTIONAL")
}
