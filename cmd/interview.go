package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alstlr0307/interviewmon-front/internal/api"
	"github.com/alstlr0307/interviewmon-front/internal/app"
	"github.com/alstlr0307/interviewmon-front/internal/grading"
	"github.com/alstlr0307/interviewmon-front/internal/session"
	"github.com/alstlr0307/interviewmon-front/internal/store"
)

var interviewCmd = &cobra.Command{
	Use:   "interview <company>",
	Short: "Run a timed mock-interview session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		company := args[0]
		cfg, st, client, err := openState(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		// Unset flags fall back to the last run's settings.
		if last, ok := st.LastOptions(); ok {
			if !cmd.Flags().Changed("count") && last.Count > 0 {
				cfg.Count = last.Count
			}
			if !cmd.Flags().Changed("job-title") && last.JobTitle != "" {
				cfg.JobTitle = last.JobTitle
			}
			if !cmd.Flags().Changed("difficulty") && last.Difficulty != "" {
				cfg.Difficulty = last.Difficulty
			}
		}

		var grader grading.Grader
		offline, _ := cmd.Flags().GetBool("offline")
		if offline {
			if cfg.LLMModel == "" {
				return fmt.Errorf("offline grading needs llm-model (and llm-url/llm-key) configured")
			}
			grader = grading.NewOpenAIGrader(cfg.LLMURL, cfg.LLMKey, cfg.LLMModel)
		} else {
			grader = api.NewRemoteGrader(client)
		}

		mgr := session.NewManager(client, grader, session.ManagerOptions{
			MinChars: cfg.MinChars,
			Debounce: cfg.Debounce,
			Autosave: cfg.Autosave,
		})
		defer mgr.Close()

		if err := st.SaveLastOptions(store.LastOptions{
			Company:    company,
			JobTitle:   cfg.JobTitle,
			Count:      cfg.Count,
			Difficulty: cfg.Difficulty,
		}); err != nil {
			slog.Warn("saving last options failed", "error", err)
		}

		a := app.New(mgr, os.Stdin, os.Stdout, app.Options{
			Count:      cfg.Count,
			JobTitle:   cfg.JobTitle,
			Difficulty: cfg.Difficulty,
			StarMode:   cfg.StarMode,
		})
		return a.Run(cmd.Context(), company)
	},
}

func init() {
	interviewCmd.Flags().Int("count", 5, "Number of questions")
	interviewCmd.Flags().String("job-title", "", "Target role, passed to question selection")
	interviewCmd.Flags().String("difficulty", "normal", "Time pressure: easy, normal or hard")
	interviewCmd.Flags().Bool("star", false, "Guided STAR answers (Situation/Task/Action/Result)")
	interviewCmd.Flags().Bool("autosave", true, "Autosave graded answers to the server")
	interviewCmd.Flags().Int("min-chars", grading.DefaultMinChars, "Minimum answer length before grading")
	interviewCmd.Flags().Int("debounce-ms", int(grading.DefaultDebounce.Milliseconds()), "Grading debounce in milliseconds")
	interviewCmd.Flags().Bool("offline", false, "Grade directly against an OpenAI-compatible endpoint")
	interviewCmd.Flags().String("llm-url", "", "OpenAI-compatible base URL for offline grading")
	interviewCmd.Flags().String("llm-key", "", "API key for offline grading")
	interviewCmd.Flags().String("llm-model", "", "Model for offline grading")
}
