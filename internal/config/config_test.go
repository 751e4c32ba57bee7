package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no CAMELLIA_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if wd, err := os.Getwd(); err == nil {
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })
	} else {
		t.Fatal(err)
	}
	for _, k := range []string{EnvDataDir, EnvJournal, EnvLogLevel} {
		// Setenv registers the restore; Unsetenv lets .env files apply.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Sources{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path, ok := cfg.Journal()
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("data", "journal.db"), path)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultFile), "data_dir: /srv/kantin\nlog_level: debug\n")

	cfg, err := Load(Sources{})
	require.NoError(t, err)
	assert.Equal(t, "/srv/kantin", cfg.DataDir)
	assert.Equal(t, "", cfg.JournalPath)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	path, ok := cfg.Journal()
	assert.True(t, ok)
	assert.Equal(t, "/srv/kantin/journal.db", path)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultFile), "")

	cfg, err := Load(Sources{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_UnknownField(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "datadir: typo\n")

	_, err := Load(Sources{File: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
	assert.Contains(t, err.Error(), "datadir")
}

func TestLoad_MissingExplicitFiles(t *testing.T) {
	dir := isolate(t)

	_, err := Load(Sources{File: filepath.Join(dir, "nope.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = Load(Sources{EnvFile: filepath.Join(dir, "nope.env")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load env file")
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultFile), "data_dir: from-yaml\njournal_path: from-yaml.db\nlog_level: warn\n")
	writeFile(t, filepath.Join(dir, DefaultEnvFile), "CAMELLIA_JOURNAL=from-dotenv.db\nCAMELLIA_LOG_LEVEL=error\n")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(Sources{})
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.DataDir, "yaml is used when nothing overrides it")
	assert.Equal(t, "from-dotenv.db", cfg.JournalPath, ".env overrides yaml")
	assert.Equal(t, "debug", cfg.LogLevel, "process environment wins over .env")
}

func TestLoad_InvalidLevel(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "loud")

	_, err := Load(Sources{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `log_level "loud"`)
}

func TestJournal_Off(t *testing.T) {
	cfg := Default()
	cfg.JournalPath = JournalOff
	path, ok := cfg.Journal()
	assert.False(t, ok)
	assert.Empty(t, path)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "  "
	assert.ErrorContains(t, cfg.Validate(), "data_dir")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"Error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("")
	assert.Error(t, err)
}
