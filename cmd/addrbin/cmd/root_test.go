package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigFile(t *testing.T) {
	// Save original value and restore after test
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	tests := []struct {
		name     string
		cfgValue string
		want     string
	}{
		{
			name:     "default config file",
			cfgValue: "",
			want:     "",
		},
		{
			name:     "custom config file",
			cfgValue: "/path/to/custom.yaml",
			want:     "/path/to/custom.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgFile = tt.cfgValue
			got := GetConfigFile()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetCLIOverrides(t *testing.T) {
	// Save original values and restore after test
	originalLogLevel := logLevel
	originalLogFormat := logFormat
	originalWorkers := workers
	originalModifiedThreshold := modifiedThreshold
	originalSkipVerify := skipVerify
	defer func() {
		logLevel = originalLogLevel
		logFormat = originalLogFormat
		workers = originalWorkers
		modifiedThreshold = originalModifiedThreshold
		skipVerify = originalSkipVerify
	}()

	tests := []struct {
		name              string
		logLevel          string
		logFormat         string
		workers           int
		modifiedThreshold float64
		skipVerify        bool
		want              CLIOverrides
	}{
		{
			name: "empty overrides",
			want: CLIOverrides{},
		},
		{
			name:              "all overrides set",
			logLevel:          "debug",
			logFormat:         "text",
			workers:           8,
			modifiedThreshold: 0.7,
			skipVerify:        true,
			want: CLIOverrides{
				LogLevel:          "debug",
				LogFormat:         "text",
				Workers:           8,
				ModifiedThreshold: 0.7,
				SkipVerify:        true,
			},
		},
		{
			name:     "partial overrides",
			logLevel: "warn",
			workers:  2,
			want: CLIOverrides{
				LogLevel: "warn",
				Workers:  2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logLevel = tt.logLevel
			logFormat = tt.logFormat
			workers = tt.workers
			modifiedThreshold = tt.modifiedThreshold
			skipVerify = tt.skipVerify

			got := GetCLIOverrides()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRootCommandStructure(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "addrbin", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.Equal(t, Version, rootCmd.Version)
}

func TestRootCommandPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	configFlag, err := flags.GetString("config")
	assert.NoError(t, err)
	assert.Equal(t, "addrbin.yaml", configFlag)

	logLevelFlag, err := flags.GetString("log-level")
	assert.NoError(t, err)
	assert.Equal(t, "", logLevelFlag)

	logFormatFlag, err := flags.GetString("log-format")
	assert.NoError(t, err)
	assert.Equal(t, "", logFormatFlag)

	workersFlag, err := flags.GetInt("workers")
	assert.NoError(t, err)
	assert.Equal(t, 0, workersFlag)

	thresholdFlag, err := flags.GetFloat64("modified-threshold")
	assert.NoError(t, err)
	assert.Equal(t, float64(-1), thresholdFlag)

	skipVerifyFlag, err := flags.GetBool("skip-verify")
	assert.NoError(t, err)
	assert.Equal(t, false, skipVerifyFlag)
}

func TestRootCommandSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, len(commands))
	for i, cmd := range commands {
		commandNames[i] = cmd.Name()
	}

	expectedCommands := []string{
		"generate",
		"plan",
		"validate",
		"versions",
		"version",
	}

	for _, expected := range expectedCommands {
		assert.Contains(t, commandNames, expected, "Expected command %s not found", expected)
	}
}

func TestRootDirArg(t *testing.T) {
	dir := t.TempDir()
	got, err := rootDirArg([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = rootDirArg([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = rootDirArg([]string{file})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
