package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("api-base", "", "")
	cmd.Flags().String("api-prefix", "", "")
	cmd.Flags().Int("count", 0, "")
	cmd.Flags().String("difficulty", "", "")
	cmd.Flags().Int("min-chars", 0, "")
	cmd.Flags().Int("debounce-ms", 0, "")
	cmd.Flags().Bool("autosave", false, "")
	return cmd
}

func TestForCmd_Defaults(t *testing.T) {
	cfg, _ := ForCmd(testCmd())

	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 5, cfg.Count)
	assert.Equal(t, "normal", cfg.Difficulty)
	assert.Equal(t, 40, cfg.MinChars)
	assert.Equal(t, 900*time.Millisecond, cfg.Debounce)
}

func TestForCmd_FlagsOverride(t *testing.T) {
	cmd := testCmd()
	require.NoError(t, cmd.Flags().Set("api-base", "http://localhost:8080"))
	require.NoError(t, cmd.Flags().Set("count", "3"))
	require.NoError(t, cmd.Flags().Set("difficulty", "hard"))
	require.NoError(t, cmd.Flags().Set("debounce-ms", "250"))

	cfg, _ := ForCmd(cmd)

	assert.Equal(t, "http://localhost:8080", cfg.APIBase)
	assert.Equal(t, 3, cfg.Count)
	assert.Equal(t, "hard", cfg.Difficulty)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
}

func TestForCmd_EnvOverride(t *testing.T) {
	t.Setenv("INTERVIEWMON_JOB_TITLE", "platform engineer")

	cfg, _ := ForCmd(testCmd())
	assert.Equal(t, "platform engineer", cfg.JobTitle)
}
