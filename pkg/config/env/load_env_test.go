package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	t.Run("loads variables from ENV_PATH", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bench.env")
		require.NoError(t, os.WriteFile(path, []byte("SEARCHBENCH_TEST_KEY=from-file\n"), 0o644))

		t.Setenv("ENV_PATH", path)
		t.Setenv("SEARCHBENCH_TEST_KEY", "")
		require.NoError(t, os.Unsetenv("SEARCHBENCH_TEST_KEY"))

		require.NoError(t, LoadDotEnv(".env"))
		assert.Equal(t, "from-file", Lookup("SEARCHBENCH_TEST_KEY"))
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		t.Setenv("ENV_PATH", "")
		err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
		assert.NoError(t, err)
	})
}

func TestLookup_TrimsWhitespace(t *testing.T) {
	t.Setenv("SEARCHBENCH_TEST_KEY", "  secret \n")
	assert.Equal(t, "secret", Lookup("SEARCHBENCH_TEST_KEY"))
	assert.Empty(t, Lookup("SEARCHBENCH_TEST_UNSET_KEY"))
}
