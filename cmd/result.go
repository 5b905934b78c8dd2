package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alstlr0307/interviewmon-front/internal/export"
)

var resultCmd = &cobra.Command{
	Use:   "result <session-id>",
	Short: "Show or export a session summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}
		_, st, client, err := openState(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := client.SessionSummary(cmd.Context(), sessionID)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer f.Close()
			out = f
		}
		return export.Write(out, export.FromSummary(summary), format)
	},
}

func init() {
	resultCmd.Flags().String("format", "markdown", "Output format: json, yaml or markdown")
	resultCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}
