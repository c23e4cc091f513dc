package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordList(t *testing.T) {
	t.Parallel()

	t.Run("picks only known words", func(t *testing.T) {
		t.Parallel()
		words, err := NewWordList(DefaultKeywords)
		require.NoError(t, err)
		assert.Equal(t, len(DefaultKeywords), words.Len())

		for range 100 {
			assert.Contains(t, DefaultKeywords, words.Next())
		}
	})

	t.Run("empty vocabulary is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewWordList(nil)
		assert.ErrorIs(t, err, ErrEmptyVocabulary)
	})

	t.Run("loads a file skipping blank lines", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "words.txt")
		require.NoError(t, os.WriteFile(path, []byte("cat\n\n  dog  \n\t\nbird\n"), 0o600))

		words, err := LoadWordList(path)
		require.NoError(t, err)
		assert.Equal(t, 3, words.Len())
		for range 50 {
			assert.Contains(t, []string{"cat", "dog", "bird"}, words.Next())
		}
	})

	t.Run("blank file is rejected", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "words.txt")
		require.NoError(t, os.WriteFile(path, []byte("\n \n"), 0o600))

		_, err := LoadWordList(path)
		assert.ErrorIs(t, err, ErrEmptyVocabulary)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadWordList(filepath.Join(t.TempDir(), "nope.txt"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
