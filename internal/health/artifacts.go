package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// OversizeThreshold marks an artifact as a deduplication-risk candidate.
	OversizeThreshold int64 = 1 << 20

	// IndexSuffix is appended to an artifact's stem to name its companion index.
	IndexSuffix = "_page_index.json"

	// ReadmeName is the corpus readme, which is not an artifact.
	ReadmeName = "README.md"
)

// KnowledgeArtifact is a primary content document in the knowledge corpus.
type KnowledgeArtifact struct {
	Path      string
	IndexPath string
	Size      int64
	HasIndex  bool
}

// IndexPathFor derives the companion index path: same directory and stem,
// with IndexSuffix in place of the extension.
func IndexPathFor(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(filepath.Dir(path), stem+IndexSuffix)
}

// ArtifactScanResult reports corpus integrity.
type ArtifactScanResult struct {
	Artifacts []KnowledgeArtifact

	// MissingIndex holds base names of artifacts without a companion index
	MissingIndex []string

	// Oversized holds base names of artifacts above the threshold (advisory)
	Oversized []string

	// OK is true iff MissingIndex is empty or the corpus is empty
	OK bool

	Duration time.Duration
}

// Check returns the uniform view of the scan.
func (r ArtifactScanResult) Check() CheckResult {
	var findings []Finding
	for _, name := range r.MissingIndex {
		findings = append(findings, Finding{
			Path:        name,
			Category:    CategoryMissingIndex,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("%s has no page index", name),
		})
	}
	for _, name := range r.Oversized {
		findings = append(findings, Finding{
			Path:        name,
			Category:    CategoryOversized,
			Severity:    SeverityLow,
			Description: fmt.Sprintf("%s exceeds 1 MiB, check for duplicated content", name),
		})
	}

	var summary string
	switch {
	case len(r.Artifacts) == 0:
		summary = "knowledge corpus is empty"
	case len(r.MissingIndex) == 0:
		summary = fmt.Sprintf("%d artifacts, all indexed", len(r.Artifacts))
	default:
		summary = fmt.Sprintf("%d of %d artifacts missing a page index", len(r.MissingIndex), len(r.Artifacts))
	}

	return CheckResult{
		Name:     "Artifact integrity",
		Status:   statusFromBool(r.OK, len(r.Oversized)),
		Summary:  summary,
		Findings: findings,
		Duration: r.Duration,
	}
}

// ArtifactIntegrityScanner verifies that every knowledge artifact directly
// under the corpus root has its companion page index.
type ArtifactIntegrityScanner struct {
	// OversizeBytes overrides OversizeThreshold when positive
	OversizeBytes int64
}

// NewArtifactIntegrityScanner creates a scanner with the default threshold.
func NewArtifactIntegrityScanner() *ArtifactIntegrityScanner {
	return &ArtifactIntegrityScanner{OversizeBytes: OversizeThreshold}
}

// Scan lists *.md files directly under root, excluding the readme. A missing
// root is treated as an empty corpus. Entries that cannot be stat'ed are
// skipped.
func (s *ArtifactIntegrityScanner) Scan(ctx context.Context, root string) ArtifactScanResult {
	start := time.Now()
	log := zap.L().With(zap.String("component", "health.artifacts"))

	threshold := s.OversizeBytes
	if threshold <= 0 {
		threshold = OversizeThreshold
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cannot list knowledge corpus", zap.String("root", root), zap.Error(err))
		}
		return ArtifactScanResult{OK: true, Duration: time.Since(start)}
	}

	result := ArtifactScanResult{}
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".md" || name == ReadmeName {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Warn("skipping artifact", zap.String("name", name), zap.Error(err))
			continue
		}

		path := filepath.Join(root, name)
		artifact := KnowledgeArtifact{
			Path:      path,
			IndexPath: IndexPathFor(path),
			Size:      info.Size(),
		}
		if _, err := os.Stat(artifact.IndexPath); err == nil {
			artifact.HasIndex = true
		} else {
			result.MissingIndex = append(result.MissingIndex, name)
		}
		if artifact.Size > threshold {
			result.Oversized = append(result.Oversized, name)
		}

		result.Artifacts = append(result.Artifacts, artifact)
	}

	sort.Strings(result.MissingIndex)
	sort.Strings(result.Oversized)

	result.OK = len(result.Artifacts) == 0 || len(result.MissingIndex) == 0
	result.Duration = time.Since(start)
	return result
}
