package health

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alterego/alterego/internal/types"
)

func TestIndexPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("books", "a_page_index.json"), IndexPathFor(filepath.Join("books", "a.md")))
	assert.Equal(t, "ddd.v2_page_index.json", IndexPathFor("ddd.v2.md"))
}

func TestArtifactIntegrityScanner_MissingIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), []byte("# A"))
	writeFile(t, filepath.Join(dir, "a_page_index.json"), []byte("{}"))
	writeFile(t, filepath.Join(dir, "b.md"), []byte("# B"))

	result := NewArtifactIntegrityScanner().Scan(context.Background(), dir)

	assert.Equal(t, []string{"b.md"}, result.MissingIndex)
	assert.False(t, result.OK)
	assert.Len(t, result.Artifacts, 2)
	assert.Empty(t, result.Oversized)

	check := result.Check()
	assert.Equal(t, types.CheckFail, check.Status)
	require.Len(t, check.Findings, 1)
	assert.Equal(t, CategoryMissingIndex, check.Findings[0].Category)
}

func TestArtifactIntegrityScanner_Empty(t *testing.T) {
	result := NewArtifactIntegrityScanner().Scan(context.Background(), t.TempDir())

	assert.True(t, result.OK)
	assert.Empty(t, result.MissingIndex)
	assert.Empty(t, result.Oversized)
	assert.Empty(t, result.Check().Findings)
	assert.Equal(t, types.CheckPass, result.Check().Status)
}

func TestArtifactIntegrityScanner_MissingRoot(t *testing.T) {
	result := NewArtifactIntegrityScanner().Scan(context.Background(), filepath.Join(t.TempDir(), "books"))
	assert.True(t, result.OK)
	assert.Empty(t, result.Artifacts)
}

func TestArtifactIntegrityScanner_SkipsReadmeAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ReadmeName), []byte("index of books"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not an artifact"))
	writeFile(t, filepath.Join(dir, "drafts", "c.md"), []byte("nested, not scanned"))

	result := NewArtifactIntegrityScanner().Scan(context.Background(), dir)

	assert.True(t, result.OK)
	assert.Empty(t, result.Artifacts)
}

func TestArtifactIntegrityScanner_OversizedIsAdvisory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "big.md"), bytes.Repeat([]byte("x"), 2048))
	writeFile(t, filepath.Join(dir, "big_page_index.json"), []byte("{}"))
	writeFile(t, filepath.Join(dir, "small.md"), []byte("x"))
	writeFile(t, filepath.Join(dir, "small_page_index.json"), []byte("{}"))

	scanner := &ArtifactIntegrityScanner{OversizeBytes: 1024}
	result := scanner.Scan(context.Background(), dir)

	assert.True(t, result.OK)
	assert.Equal(t, []string{"big.md"}, result.Oversized)
	assert.Equal(t, types.CheckPartial, result.Check().Status)
	assert.True(t, result.Check().Status.Passed())
}
