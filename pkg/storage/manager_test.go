package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "boorudl/pkg/errors"
)

// failingReader errors on the first read, simulating a dropped transfer.
type failingReader struct{}

func (f *failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestNewManagerCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "output")
	m, err := NewManager(root)
	require.NoError(t, err)
	assert.Equal(t, root, m.Root())

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewManagerUncreatableRoot(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewManager(filepath.Join(blocker, "output"))
	assert.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeFilesystem, apperrors.TypeOf(err))
}

func TestFailuresClassifiedAsFilesystem(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	err = m.Save(&failingReader{}, "general", "1_1.jpg")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeFilesystem, apperrors.TypeOf(err))
}

func TestSaveAndExists(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	assert.False(t, m.Exists("general", "10_1.jpg"))

	data := []byte("image bytes")
	require.NoError(t, m.Save(bytes.NewReader(data), "general", "10_1.jpg"))

	assert.True(t, m.Exists("general", "10_1.jpg"))

	content, err := os.ReadFile(m.Path("general", "10_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, data, content)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)

	require.NoError(t, m.Save(strings.NewReader("data"), "explicit", "5_2.png"))

	entries, err := os.ReadDir(filepath.Join(root, "explicit"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "5_2.png", entries[0].Name())
}

// A reader that fails mid-stream must not leave a destination file
// behind, otherwise the dedup check would treat the post as downloaded.
func TestSaveFailedStreamLeavesNothing(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)

	failing := io.MultiReader(strings.NewReader("partial"), &failingReader{})
	err = m.Save(failing, "general", "1_1.jpg")
	require.Error(t, err)

	assert.False(t, m.Exists("general", "1_1.jpg"))
	entries, err := os.ReadDir(filepath.Join(root, "general"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveConcurrentRatingDirs(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	subfolders := []string{"general", "sensitive", "questionable", "explicit", "unknown"}
	var wg sync.WaitGroup
	errs := make(chan error, len(subfolders)*4)

	for i := 0; i < 4; i++ {
		for _, sub := range subfolders {
			wg.Add(1)
			go func(sub string, i int) {
				defer wg.Done()
				name := sub + "_" + string(rune('a'+i)) + ".jpg"
				errs <- m.Save(strings.NewReader("x"), sub, name)
			}(sub, i)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	count, err := m.CountFiles()
	require.NoError(t, err)
	assert.Equal(t, len(subfolders)*4, count)
}

func TestCountFiles(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	count, err := m.CountFiles()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, m.Save(strings.NewReader("a"), "general", "1_1.jpg"))
	require.NoError(t, m.Save(strings.NewReader("b"), "sensitive", "2_2.jpg"))

	count, err = m.CountFiles()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
