package health

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EssentialFilesResult reports which required scripts are present.
type EssentialFilesResult struct {
	Checked []string
	Missing []string
	OK      bool

	Duration time.Duration
}

// Check returns the uniform view of the result.
func (r EssentialFilesResult) Check() CheckResult {
	var findings []Finding
	for _, rel := range r.Missing {
		findings = append(findings, Finding{
			Path:        rel,
			Category:    CategoryMissingScript,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("missing script %s", rel),
		})
	}

	summary := fmt.Sprintf("all %d essential scripts found", len(r.Checked))
	if !r.OK {
		summary = "missing scripts: " + strings.Join(r.Missing, ", ")
	}

	return CheckResult{
		Name:     "Essential files",
		Status:   statusFromBool(r.OK, 0),
		Summary:  summary,
		Findings: findings,
		Duration: r.Duration,
	}
}

// EssentialFilesCheck verifies that a fixed list of scripts exists under
// a scripts directory.
type EssentialFilesCheck struct {
	Dir   string
	Files []string
}

// Run stats every file. Any stat error counts as missing.
func (c *EssentialFilesCheck) Run() EssentialFilesResult {
	start := time.Now()

	result := EssentialFilesResult{Checked: c.Files}
	for _, rel := range c.Files {
		if _, err := os.Stat(filepath.Join(c.Dir, filepath.FromSlash(rel))); err != nil {
			result.Missing = append(result.Missing, rel)
		}
	}

	result.OK = len(result.Missing) == 0
	result.Duration = time.Since(start)
	return result
}
