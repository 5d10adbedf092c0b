package health

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alterego/alterego/internal/types"
)

func TestEssentialFilesCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "knowledge", "index-book-pages.py"), []byte("#!/usr/bin/env python3"))

	check := &EssentialFilesCheck{
		Dir:   dir,
		Files: []string{"knowledge/index-book-pages.py", "patrol/clickup_adapter.py"},
	}
	result := check.Run()

	assert.False(t, result.OK)
	assert.Equal(t, []string{"patrol/clickup_adapter.py"}, result.Missing)
	assert.Equal(t, types.CheckFail, result.Check().Status)
	assert.Contains(t, result.Check().Summary, "patrol/clickup_adapter.py")
}

func TestEssentialFilesCheck_AllPresent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "analyze", "analyze_thoughts.py"), nil)

	result := (&EssentialFilesCheck{Dir: dir, Files: []string{"analyze/analyze_thoughts.py"}}).Run()

	assert.True(t, result.OK)
	assert.Equal(t, types.CheckPass, result.Check().Status)
}
