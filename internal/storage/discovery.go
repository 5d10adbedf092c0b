package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// rootMarkers identify a workspace root, checked in order.
var rootMarkers = []string{
	"alterego.yaml",
	".agent",
	filepath.Join("docs", "adr"),
}

// DiscoverRoot finds the workspace root for startDir.
//
// ALTEREGO_ROOT wins when set. Otherwise the directory tree is walked up
// from startDir looking for a root marker (alterego.yaml, .agent/ or
// docs/adr/). When nothing is found, startDir itself is the root.
//
// Example:
//
//	cd ~/ws/docs/adr && alterego fitness
//	→ uses ~/ws (it holds .agent/)
func DiscoverRoot(startDir string) (string, error) {
	if root := os.Getenv("ALTEREGO_ROOT"); root != "" {
		return filepath.Abs(root)
	}

	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	dir := start
	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding a marker
			break
		}
		dir = parent
	}

	return start, nil
}
