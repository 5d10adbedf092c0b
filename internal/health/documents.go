package health

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alterego/alterego/internal/types"
)

// decisionRecordName matches numeric-prefixed markdown files (0001-foo.md).
var decisionRecordName = regexp.MustCompile(`^[0-9].*\.md$`)

// DecisionRecord is one decision document. Tag is derived on every scan
// and never persisted.
type DecisionRecord struct {
	Path     string
	Content  string
	Encoding string
	Tag      types.LifecycleTag
}

// LoadDecisionRecords walks dir recursively and reads every numeric-prefixed
// markdown file. A missing directory yields no records. Unreadable files are
// skipped; the walk itself only fails on context cancellation.
func LoadDecisionRecords(ctx context.Context, dir string, decoder *TextDecoder) ([]DecisionRecord, error) {
	log := zap.L().With(zap.String("component", "health.documents"))

	if decoder == nil {
		decoder = NewTextDecoder()
	}

	var records []DecisionRecord

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			log.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() || !decisionRecordName.MatchString(d.Name()) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable decision record", zap.String("path", path), zap.Error(err))
			return nil
		}

		content, enc := decoder.Decode(data)
		if enc != "utf-8" {
			log.Debug("decoded decision record with fallback", zap.String("path", path), zap.String("encoding", enc))
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}

		records = append(records, DecisionRecord{
			Path:     rel,
			Content:  content,
			Encoding: enc,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// DocumentScanResult aggregates lifecycle tags across decision records.
type DocumentScanResult struct {
	// Records carry their derived tags, in input order
	Records []DecisionRecord

	// Counts always holds every tag, including zero counts
	Counts map[types.LifecycleTag]int

	// Unresolved lists records classified Unknown
	Unresolved []string

	// OK is true iff no record is Unknown
	OK bool

	Duration time.Duration
}

// Total is the number of scanned records.
func (r DocumentScanResult) Total() int {
	return len(r.Records)
}

// UnknownCount is the number of records without a recognizable status.
func (r DocumentScanResult) UnknownCount() int {
	return r.Counts[types.TagUnknown]
}

// Check returns the uniform view of the scan.
func (r DocumentScanResult) Check() CheckResult {
	var findings []Finding
	for _, path := range r.Unresolved {
		findings = append(findings, Finding{
			Path:        path,
			Category:    CategoryUnknownStatus,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%s has no recognizable status", path),
		})
	}

	summary := fmt.Sprintf("%d decision records, all with a status", r.Total())
	if !r.OK {
		summary = fmt.Sprintf("%d of %d decision records have undefined status", r.UnknownCount(), r.Total())
	}

	return CheckResult{
		Name:     "Document governance",
		Status:   statusFromBool(r.OK, 0),
		Summary:  summary,
		Findings: findings,
		Duration: r.Duration,
	}
}

// DocumentHealthScanner classifies decision records and counts tags.
type DocumentHealthScanner struct {
	Classifier *StatusClassifier
}

// NewDocumentHealthScanner creates a scanner with the default classifier.
func NewDocumentHealthScanner() *DocumentHealthScanner {
	return &DocumentHealthScanner{Classifier: NewStatusClassifier()}
}

// Scan classifies every record. It has no side effects; the input slice is
// not modified.
func (s *DocumentHealthScanner) Scan(records []DecisionRecord) DocumentScanResult {
	start := time.Now()

	classifier := s.Classifier
	if classifier == nil {
		classifier = defaultClassifier
	}

	counts := make(map[types.LifecycleTag]int, len(types.LifecycleTags))
	for _, tag := range types.LifecycleTags {
		counts[tag] = 0
	}

	classified := make([]DecisionRecord, len(records))
	var unresolved []string

	for i, rec := range records {
		rec.Tag = classifier.Classify(rec.Content)
		counts[rec.Tag]++
		if rec.Tag == types.TagUnknown {
			unresolved = append(unresolved, rec.Path)
		}
		classified[i] = rec
	}

	return DocumentScanResult{
		Records:    classified,
		Counts:     counts,
		Unresolved: unresolved,
		OK:         counts[types.TagUnknown] == 0,
		Duration:   time.Since(start),
	}
}
