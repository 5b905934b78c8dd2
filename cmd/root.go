package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alstlr0307/interviewmon-front/internal/api"
	"github.com/alstlr0307/interviewmon-front/internal/config"
	"github.com/alstlr0307/interviewmon-front/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "interviewmon",
	Short: "Mock interview trainer for the InterviewMon backend",
	Long:  "interviewmon runs timed mock-interview sessions in the terminal, with AI grading and feedback.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.SetupLogging(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("api-base", "", "InterviewMon backend base URL (INTERVIEWMON_API_BASE)")
	rootCmd.PersistentFlags().String("api-prefix", "", "API path prefix (default /api)")
	rootCmd.PersistentFlags().String("db", "", "Path to the local SQLite state file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(versionCmd)
}

// openState resolves configuration and opens the local store and API
// client. The caller owns the store's Close.
func openState(cmd *cobra.Command) (*config.Config, *store.Store, *api.Client, error) {
	cfg, _ := config.ForCmd(cmd)

	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resolve state path: %w", err)
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open local state: %w", err)
	}

	if cfg.APIBase == "" {
		st.Close()
		return nil, nil, nil, fmt.Errorf("no backend configured: set --api-base or INTERVIEWMON_API_BASE")
	}
	client := api.NewClient(api.Options{
		BaseURL: cfg.APIBase,
		Prefix:  cfg.APIPrefix,
		Tokens:  st,
	})
	return cfg, st, client, nil
}
