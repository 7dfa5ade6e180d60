package copier

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/m3usync/internal/config"
	"github.com/vmunix/m3usync/internal/search"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() config.Options {
	return config.Default().Options()
}

// writeSource creates a source file and returns a match for it.
func writeSource(t *testing.T, dir, rel, content string) search.Match {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	return search.Match{
		Target:  filepath.Base(rel),
		Path:    full,
		RelPath: rel,
		Size:    int64(len(content)),
	}
}

func TestCopy(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	matches := []search.Match{
		writeSource(t, srcDir, "a.mp4", "aaa"),
		writeSource(t, srcDir, "b.mkv", "bbbb"),
	}

	c := NewCopier(testOptions(), testLogger())
	outcomes, err := c.Copy(context.Background(), matches, outDir)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	for _, out := range outcomes {
		assert.True(t, out.Copied)
		assert.False(t, out.Skipped)
		assert.Empty(t, out.Err)
	}
	assert.Equal(t, int64(3), outcomes[0].Bytes)

	got, err := os.ReadFile(filepath.Join(outDir, "a.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "aaa", string(got))

	stats := c.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Copied)
	assert.Equal(t, int64(7), stats.Bytes)
}

func TestCopyCollisionSuffix(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	matches := []search.Match{
		writeSource(t, srcDir, "one/a.mp4", "first"),
		writeSource(t, srcDir, "two/a.mp4", "second"),
		writeSource(t, srcDir, "three/a.mp4", "third"),
	}

	c := NewCopier(testOptions(), testLogger())
	outcomes, err := c.Copy(context.Background(), matches, outDir)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, filepath.Join(outDir, "a.mp4"), outcomes[0].Dest)
	assert.Equal(t, filepath.Join(outDir, "a_1.mp4"), outcomes[1].Dest)
	assert.Equal(t, filepath.Join(outDir, "a_2.mp4"), outcomes[2].Dest)

	got, err := os.ReadFile(filepath.Join(outDir, "a_1.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestCopyCollisionCaseFolded(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	matches := []search.Match{
		writeSource(t, srcDir, "one/A.MP4", "first"),
		writeSource(t, srcDir, "two/a.mp4", "second"),
	}

	c := NewCopier(testOptions(), testLogger())
	outcomes, err := c.Copy(context.Background(), matches, outDir)
	require.NoError(t, err)

	// Case-insensitive matching treats A.MP4 and a.mp4 as colliding names.
	assert.Equal(t, filepath.Join(outDir, "a_1.mp4"), outcomes[1].Dest)
}

func TestCopyAllCopiesEveryMatchInTargetOrder(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeSource(t, srcDir, "one/a.mp4", "first")
	writeSource(t, srcDir, "two/a.mp4", "second")
	writeSource(t, srcDir, "b.mkv", "b")

	s := search.NewSearcher(testOptions(), testLogger())
	results, err := s.Search(context.Background(), srcDir, []string{"a.mp4", "b.mkv"})
	require.NoError(t, err)
	require.Len(t, results.For("a.mp4"), 2)

	c := NewCopier(testOptions(), testLogger())
	outcomes, err := c.CopyAll(context.Background(), results, outDir)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for _, out := range outcomes {
		assert.True(t, out.Copied)
	}

	// Same collision policy as Copy: the second a.mp4 gets a suffix.
	assert.Equal(t, filepath.Join(outDir, "a.mp4"), outcomes[0].Dest)
	assert.Equal(t, filepath.Join(outDir, "a_1.mp4"), outcomes[1].Dest)
	assert.Equal(t, filepath.Join(outDir, "b.mkv"), outcomes[2].Dest)
}

func TestCopySkipsExistingWithoutOverwrite(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	match := writeSource(t, srcDir, "a.mp4", "new")
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "a.mp4"), []byte("old"), 0644))

	c := NewCopier(testOptions(), testLogger())
	outcomes, err := c.Copy(context.Background(), []search.Match{match}, outDir)
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Skipped)
	assert.Contains(t, outcomes[0].SkipReason, "overwrite is disabled")

	got, _ := os.ReadFile(filepath.Join(outDir, "a.mp4"))
	assert.Equal(t, "old", string(got))
}

func TestCopyOverwrite(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	match := writeSource(t, srcDir, "a.mp4", "new")
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "a.mp4"), []byte("old"), 0644))

	opts := testOptions()
	opts.Overwrite = true
	c := NewCopier(opts, testLogger())
	outcomes, err := c.Copy(context.Background(), []search.Match{match}, outDir)
	require.NoError(t, err)

	assert.True(t, outcomes[0].Copied)
	got, _ := os.ReadFile(filepath.Join(outDir, "a.mp4"))
	assert.Equal(t, "new", string(got))
}

func TestCopyIdempotentSecondRunSkipsAll(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	matches := []search.Match{
		writeSource(t, srcDir, "a.mp4", "aaa"),
		writeSource(t, srcDir, "b.mkv", "bbb"),
	}

	c := NewCopier(testOptions(), testLogger())
	_, err := c.Copy(context.Background(), matches, outDir)
	require.NoError(t, err)

	second := NewCopier(testOptions(), testLogger())
	outcomes, err := second.Copy(context.Background(), matches, outDir)
	require.NoError(t, err)

	for _, out := range outcomes {
		assert.True(t, out.Skipped)
	}
	got, _ := os.ReadFile(filepath.Join(outDir, "a.mp4"))
	assert.Equal(t, "aaa", string(got))
}

func TestCopyMissingSourceRecordedNotFatal(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	gone := writeSource(t, srcDir, "gone.mp4", "x")
	require.NoError(t, os.Remove(gone.Path))
	ok := writeSource(t, srcDir, "ok.mp4", "fine")

	c := NewCopier(testOptions(), testLogger())
	outcomes, err := c.Copy(context.Background(), []search.Match{gone, ok}, outDir)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.False(t, outcomes[0].Copied)
	assert.False(t, outcomes[0].Skipped)
	assert.NotEmpty(t, outcomes[0].Err)

	assert.True(t, outcomes[1].Copied)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Copied)
}

func TestCopyMaintainStructure(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	match := writeSource(t, srcDir, "shows/s1/ep1.mp4", "episode")

	opts := testOptions()
	opts.MaintainStructure = true
	c := NewCopier(opts, testLogger())
	outcomes, err := c.Copy(context.Background(), []search.Match{match}, outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "shows/s1/ep1.mp4"), outcomes[0].Dest)
	_, err = os.Stat(filepath.Join(outDir, "shows", "s1", "ep1.mp4"))
	assert.NoError(t, err)
}

func TestCopyCancelled(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	match := writeSource(t, srcDir, "a.mp4", "aaa")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCopier(testOptions(), testLogger())
	_, err := c.Copy(ctx, []search.Match{match}, outDir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCopyCreatesOutputFolder(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "nested", "out")
	match := writeSource(t, srcDir, "a.mp4", "aaa")

	c := NewCopier(testOptions(), testLogger())
	_, err := c.Copy(context.Background(), []search.Match{match}, outDir)
	require.NoError(t, err)

	info, err := os.Stat(outDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
