package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storefront", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "seed", "quote"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	envFile := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFile)
	assert.Equal(t, ".env", envFile.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestSeedCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	seed, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)

	for _, name := range []string{"admin-email", "admin-password", "producer-email", "producer-password"} {
		assert.NotNil(t, seed.Flags().Lookup(name), "flag %s", name)
	}
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"quote", "--price", "10", "--format", "yaml", "--env-file", ""})
	cmd.SetOut(new(nopWriter))
	cmd.SetErr(new(nopWriter))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STOREFRONT_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("STOREFRONT_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("STOREFRONT_TEST_VALUE"))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("STOREFRONT_TEST_VALUE"))
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STOREFRONT_TEST_KEEP=from-file\n"), 0o600))
	t.Setenv("STOREFRONT_TEST_KEEP", "from-env")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("STOREFRONT_TEST_KEEP"))
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }
