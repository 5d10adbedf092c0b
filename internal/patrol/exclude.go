package patrol

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultExcludes are housekeeping directories never worth reporting.
var DefaultExcludes = []string{".git", "node_modules", "__pycache__", ".venv"}

// ShouldExcludePath checks if a workspace-relative path matches any exclude
// pattern. Patterns can be:
//   - Bare names: ".git" matches ".git", ".git/config" and "sub/.git/config"
//   - Relative paths: ".agent/brain/reports" matches that directory and
//     everything below it, but only from the workspace root
//   - Globs: "*.pyc" matches any component, ".agent/brain/*.lock" matches
//     from the workspace root (path.Match syntax)
//
// Matching happens at path component boundaries, so "venv" does not match
// ".venv" and "node_modules" does not match "node_modules_backup".
func ShouldExcludePath(relPath string, patterns []string) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		pattern = strings.Trim(filepath.ToSlash(pattern), "/")
		if pattern == "" {
			continue
		}

		if strings.ContainsAny(pattern, "*?[") {
			if matchGlob(relPath, pattern) {
				return true
			}
			continue
		}

		// Pattern at start of path
		if relPath == pattern || strings.HasPrefix(relPath, pattern+"/") {
			return true
		}

		// Bare name after a path separator, at any depth
		if !strings.Contains(pattern, "/") &&
			(strings.HasSuffix(relPath, "/"+pattern) || strings.Contains(relPath, "/"+pattern+"/")) {
			return true
		}
	}

	return false
}

func matchGlob(relPath, pattern string) bool {
	if strings.Contains(pattern, "/") {
		parts := strings.Split(relPath, "/")
		depth := strings.Count(pattern, "/") + 1
		if len(parts) < depth {
			return false
		}
		ok, _ := path.Match(pattern, strings.Join(parts[:depth], "/"))
		return ok
	}

	for _, part := range strings.Split(relPath, "/") {
		if ok, _ := path.Match(pattern, part); ok {
			return true
		}
	}
	return false
}
