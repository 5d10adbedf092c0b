package health

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/alterego/alterego/internal/types"
)

// maxListed caps finding lines per check unless verbose.
const maxListed = 3

// RenderReport prints the console report for an evaluation. Presentation
// only: the verdict is already decided.
func RenderReport(w io.Writer, r *FitnessReport, verbose bool) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	rule := strings.Repeat("─", 60)

	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "%s\n", bold("Workspace fitness check"))
	fmt.Fprintf(w, "%s\n", rule)

	checks := r.Checks()
	for i, c := range checks {
		fmt.Fprintf(w, "\n%s [%d/%d] %s\n", cyan("→"), i+1, len(checks), c.Name)

		switch c.Status {
		case types.CheckPass:
			fmt.Fprintf(w, "  %s %s\n", green("✓"), c.Summary)
		case types.CheckPartial:
			fmt.Fprintf(w, "  %s %s\n", yellow("⚠"), c.Summary)
		default:
			fmt.Fprintf(w, "  %s %s\n", red("✗"), c.Summary)
		}

		listed := 0
		for _, f := range c.Findings {
			if !verbose && listed >= maxListed {
				fmt.Fprintf(w, "    … and %d more\n", len(c.Findings)-listed)
				break
			}
			fmt.Fprintf(w, "    • %s\n", f.Description)
			listed++
		}

		if i == 2 {
			renderTagCounts(w, r.Documents)
		}
		if i == 3 && verbose {
			for _, name := range r.Dependencies.Order {
				mark := green("✓")
				if r.Dependencies.Availability[name] == types.Missing {
					mark = red("✗")
				}
				fmt.Fprintf(w, "    %s %s\n", mark, name)
			}
		}
		if verbose {
			fmt.Fprintf(w, "    (%s)\n", c.Duration.Round(time.Millisecond))
		}
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	label := fmt.Sprintf("SYSTEM HEALTH: %s (%s)", strings.ToUpper(string(r.Verdict)), r.Verdict.Description())
	switch r.Verdict {
	case types.VerdictExcellent, types.VerdictGood:
		fmt.Fprintf(w, "%s %s\n", green("✓"), label)
	case types.VerdictFunctional:
		fmt.Fprintf(w, "%s %s\n", yellow("⚠"), label)
	default:
		fmt.Fprintf(w, "%s %s\n", red("✗"), label)
	}
	fmt.Fprintf(w, "%s\n", rule)
}

func renderTagCounts(w io.Writer, d DocumentScanResult) {
	fmt.Fprintf(w, "    decision records: %d\n", d.Total())
	for _, tag := range types.LifecycleTags {
		fmt.Fprintf(w, "      %-11s %d\n", tag, d.Counts[tag])
	}
}
