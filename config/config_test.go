package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	file := filepath.Join(dir, "receipts.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: "9000"
database:
  path: /tmp/from-file.db
logging:
  format: json
`), 0o600))

	t.Setenv("RECEIPTS_DATABASE_PATH", "/tmp/from-env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-format", "text", "")
	require.NoError(t, flags.Parse([]string{"--log-format=logfmt"}))

	cfg, err := LoadConfig(file, flags)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort, "file overrides default")
	assert.Equal(t, "/tmp/from-env.db", cfg.DatabasePath, "env overrides file")
	assert.Equal(t, "logfmt", cfg.LogFormat, "flag overrides file")
}

func TestLoadConfigLegacyEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("TESSDATA_PREFIX", "/opt/tessdata")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, "/opt/tessdata", cfg.TesseractDataPath)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "log level", env: map[string]string{"RECEIPTS_LOGGING_LEVEL": "chatty"}},
		{name: "log format", env: map[string]string{"RECEIPTS_LOGGING_FORMAT": "xml"}},
		{name: "upload size", env: map[string]string{"RECEIPTS_UPLOAD_MAX_FILE_SIZE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("", nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := LoadConfig("does-not-exist.yaml", nil)
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
