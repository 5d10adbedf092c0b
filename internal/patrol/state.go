package patrol

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
)

// MonologueHeading starts the agent's section in the state document.
const MonologueHeading = "## Agent monologue"

// StateLockTimeout bounds the wait for the state document lock.
const StateLockTimeout = 2 * time.Second

// UpdateState puts message at the top of the state document as the agent
// monologue section, replacing an existing one. Everything else in the
// document is preserved. A missing document is left alone.
func UpdateState(path string, now time.Time, message string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "patrol: stat %s", path)
	}

	fl := flock.New(path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), StateLockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return eris.Wrapf(err, "patrol: lock %s", path)
	}
	if !locked {
		return eris.Errorf("patrol: timed out locking %s", path)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "patrol: read %s", path)
	}

	updated := replaceMonologue(string(data), now, message)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return eris.Wrapf(err, "patrol: write %s", path)
	}

	return nil
}

// replaceMonologue removes any existing monologue section (its heading up
// to the next level-two heading) and prepends a fresh one.
func replaceMonologue(content string, now time.Time, message string) string {
	section := fmt.Sprintf("%s (%s)\n> %s\n\n", MonologueHeading, now.Format("2006-01-02 15:04"), message)

	lines := strings.SplitAfter(content, "\n")
	var kept []string
	inSection := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, MonologueHeading):
			inSection = true
			continue
		case inSection && strings.HasPrefix(line, "## "):
			inSection = false
		case inSection:
			continue
		}
		kept = append(kept, line)
	}

	return section + strings.Join(kept, "")
}
