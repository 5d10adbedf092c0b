package patrol

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// summaryItems is how many changes the summary mentions.
const summaryItems = 3

// LatestSummary condenses the newest patrol report in dir into one
// sentence. It never fails; problems become the sentence.
func LatestSummary(dir string) string {
	reports, err := filepath.Glob(filepath.Join(dir, ReportPrefix+"*.md"))
	if err != nil {
		return fmt.Sprintf("Could not read patrol reports: %v.", err)
	}
	if len(reports) == 0 {
		return "No recent changes, it seems."
	}

	// Names embed the timestamp, so the lexically last is the newest
	sort.Strings(reports)
	latest := reports[len(reports)-1]

	f, err := os.Open(latest)
	if err != nil {
		return fmt.Sprintf("Could not read patrol report: %v.", err)
	}
	defer f.Close()

	var changes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(changes) < summaryItems {
		line := scanner.Text()
		if !strings.HasPrefix(line, "- `") {
			continue
		}
		item := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(line), "- `"), "`", "")
		changes = append(changes, item)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Sprintf("Could not read patrol report: %v.", err)
	}

	if len(changes) == 0 {
		return "No notable file changes found."
	}
	return fmt.Sprintf("Latest changes include %s.", strings.Join(changes, ", "))
}
