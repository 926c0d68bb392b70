package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/mahyarmirrashed/afd/internal/config"
)

var envVars = []string{
	"AFD_CONFIG", "AFD_ROOT_PATH", "AFD_TEMP_PATH", "AFD_DELETION_FREQUENCY_DAYS",
	"AFD_FOLDER_NAMES", "AFD_LOG_LEVEL", "AFD_EXCLUDE", "AFD_DAEMONIZE",
	"AFD_DRY_RUN", "AFD_NOTIFICATIONS",
}

// runLoad parses args the way the afd command does and returns the merged
// configuration. The working directory is a fresh temp dir with no default
// config file.
func runLoad(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	var (
		cfg     *config.Config
		loadErr error
	)
	cmd := &cli.Command{
		Name:  "afd",
		Flags: flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, loadErr = loadConfig(c)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"afd"}, args...)))
	return cfg, loadErr
}

func setup(t *testing.T) (root, temp string) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	chdir(t, t.TempDir())
	return t.TempDir(), t.TempDir()
}

func TestLoadConfigFromFlagsAlone(t *testing.T) {
	root, temp := setup(t)

	cfg, err := runLoad(t,
		"--root-path", root,
		"--temp-path", temp,
		"--deletion-frequency-days", "7",
		"--folder-names", "inbox, archive",
		"--folder-names", "outbox",
		"--exclude", "*.lock,*.tmp",
	)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.RootPath)
	assert.Equal(t, temp, cfg.TempPath)
	assert.Equal(t, 7, cfg.DeletionFrequencyDays)
	assert.Equal(t, []string{"inbox", "archive", "outbox"}, cfg.FolderNames)
	assert.Equal(t, []string{"*.lock", "*.tmp"}, cfg.Exclude)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFlagsOverrideDefaultFile(t *testing.T) {
	root, temp := setup(t)
	content := "ROOT_PATH=" + root + "\n" +
		"TEMP_PATH=" + temp + "\n" +
		"DELETION_FREQUENCY_DAYS=7\n" +
		"FOLDER_NAMES=inbox\n" +
		"LOG_LEVEL=error\n"
	require.NoError(t, os.WriteFile(config.DefaultConfigFilename, []byte(content), 0o644))

	cfg, err := runLoad(t, "--deletion-frequency-days", "14", "--log-level", "WARN", "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, root, cfg.RootPath, "file values are kept when no flag is set")
	assert.Equal(t, []string{"inbox"}, cfg.FolderNames)
	assert.Equal(t, 14, cfg.DeletionFrequencyDays)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.DryRun)
}

func TestLoadConfigExplicitMissingFile(t *testing.T) {
	root, temp := setup(t)

	_, err := runLoad(t,
		"--config", filepath.Join(t.TempDir(), "absent.yaml"),
		"--root-path", root,
		"--temp-path", temp,
		"--deletion-frequency-days", "7",
		"--folder-names", "inbox",
	)

	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Empty(t, cerr.Key)
}

func TestLoadConfigBadDaysFlag(t *testing.T) {
	root, temp := setup(t)

	_, err := runLoad(t,
		"--root-path", root,
		"--temp-path", temp,
		"--deletion-frequency-days", "weekly",
		"--folder-names", "inbox",
	)

	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, config.KeyDeletionFrequencyDays, cerr.Key)
	assert.Equal(t, "flags", cerr.Source)
}

func TestLoadConfigMissingRequiredValues(t *testing.T) {
	_, temp := setup(t)

	_, err := runLoad(t, "--temp-path", temp, "--deletion-frequency-days", "7", "--folder-names", "inbox")

	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, config.KeyRootPath, cerr.Key)
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
