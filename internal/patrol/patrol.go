// Package patrol detects recently modified workspace files, writes dated
// patrol reports and keeps the agent state document current.
package patrol

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultWindow is how far back a patrol looks.
const DefaultWindow = 24 * time.Hour

// ReportPrefix starts every patrol report file name.
const ReportPrefix = "patrol_"

// ChangedFile is one file modified inside the patrol window.
type ChangedFile struct {
	// Path is relative to the workspace root, slash separated
	Path    string
	ModTime time.Time
}

// Options configure a scan.
type Options struct {
	Root    string
	Since   time.Time
	Exclude []string
}

// Scan walks the workspace and returns files modified after opts.Since,
// newest first. Excluded directories are not descended into. Files that
// cannot be stat'ed are skipped.
func Scan(ctx context.Context, opts Options) ([]ChangedFile, error) {
	log := zap.L().With(zap.String("component", "patrol"))

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, eris.Wrapf(err, "patrol: resolve root %q", opts.Root)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, eris.Errorf("patrol: root %s is not a directory", root)
	}

	var changed []ChangedFile

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if ShouldExcludePath(rel, opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(opts.Since) {
			changed = append(changed, ChangedFile{
				Path:    filepath.ToSlash(rel),
				ModTime: info.ModTime(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "patrol: walk workspace")
	}

	sort.SliceStable(changed, func(i, j int) bool {
		if changed[i].ModTime.Equal(changed[j].ModTime) {
			return changed[i].Path < changed[j].Path
		}
		return changed[i].ModTime.After(changed[j].ModTime)
	})

	return changed, nil
}

// ReportName is the file name of the report written at now.
func ReportName(now time.Time) string {
	return ReportPrefix + now.Format("20060102_1504") + ".md"
}

// WriteReport writes one dated report listing files into dir and returns
// its path. A report written in the same minute replaces the earlier one.
func WriteReport(dir string, now time.Time, window time.Duration, files []ChangedFile) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", eris.Wrapf(err, "patrol: create reports dir %s", dir)
	}

	path := filepath.Join(dir, ReportName(now))
	if err := os.WriteFile(path, []byte(RenderReport(now, window, files)), 0644); err != nil {
		return "", eris.Wrapf(err, "patrol: write report %s", path)
	}

	return path, nil
}

// RenderReport formats the report body.
func RenderReport(now time.Time, window time.Duration, files []ChangedFile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Patrol report (%s)\n\n", now.Format("2006-01-02 15:04"))

	if len(files) == 0 {
		fmt.Fprintf(&b, "No workspace changes were detected in the last %s.\n", formatWindow(window))
	} else {
		b.WriteString("## Recent changes\n")
		for _, f := range files {
			fmt.Fprintf(&b, "- `%s` (%s)\n", f.Path, f.ModTime.Format("15:04"))
		}
	}

	b.WriteString("\n## Insight\n")
	if touchesDocs(files) {
		b.WriteString("- Documentation changed. Check decision records for status updates and run `alterego fitness`.\n")
	} else {
		b.WriteString("- No documentation changed. Scripts may be worth revisiting for automation.\n")
	}

	return b.String()
}

func touchesDocs(files []ChangedFile) bool {
	for _, f := range files {
		if strings.HasSuffix(f.Path, ".md") {
			return true
		}
	}
	return false
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}

// Patroller runs a scan and writes its report.
type Patroller struct {
	Root       string
	ReportsDir string
	Window     time.Duration
	Exclude    []string

	// Housekeeping are files the agent itself writes (absolute paths or
	// globs). They are excluded so a patrol never reports its own churn.
	Housekeeping []string

	// Now is the clock, time.Now when nil
	Now func() time.Time
}

// Result is the outcome of one patrol.
type Result struct {
	ReportPath string
	Files      []ChangedFile
}

// Run scans the window ending now and writes the report. The reports
// directory and housekeeping files are always excluded from the scan.
func (p *Patroller) Run(ctx context.Context) (*Result, error) {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	window := p.Window
	if window <= 0 {
		window = DefaultWindow
	}

	exclude := append([]string{}, p.Exclude...)
	for _, own := range append([]string{p.ReportsDir}, p.Housekeeping...) {
		if rel, ok := p.relative(own); ok {
			exclude = append(exclude, rel)
		}
	}

	files, err := Scan(ctx, Options{Root: p.Root, Since: now.Add(-window), Exclude: exclude})
	if err != nil {
		return nil, err
	}

	path, err := WriteReport(p.ReportsDir, now, window, files)
	if err != nil {
		return nil, err
	}

	zap.L().Info("patrol report written",
		zap.String("component", "patrol"),
		zap.String("path", path),
		zap.Int("changed", len(files)))

	return &Result{ReportPath: path, Files: files}, nil
}

// relative turns a path below Root into a root-anchored exclude pattern.
func (p *Patroller) relative(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	root, err := filepath.Abs(p.Root)
	if err != nil {
		return "", false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
