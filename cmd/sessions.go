package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alstlr0307/interviewmon-front/internal/api"
)

var (
	sessionRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sessionHeadStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List your interview sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, client, err := openState(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		recent, _ := cmd.Flags().GetBool("recent")
		var items []api.SessionItem
		if recent {
			items, err = client.RecentSessions(cmd.Context())
		} else {
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")
			items, err = client.ListSessions(cmd.Context(), page, size)
		}
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("no sessions yet")
			return nil
		}

		fmt.Println(sessionHeadStyle.Render(fmt.Sprintf("%-6s %-16s %-14s %-9s %-7s %s", "ID", "COMPANY", "ROLE", "ANSWERED", "AVG", "CREATED")))
		for _, s := range items {
			row := fmt.Sprintf("%-6d %-16s %-14s %4d/%-4d %5.1f  %s",
				s.ID, clip(s.Company, 16), clip(s.JobTitle, 14), s.Answered, s.Total, s.AverageScore, s.CreatedAt)
			fmt.Println(sessionRowStyle.Render(row))
		}
		return nil
	},
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func init() {
	sessionsCmd.Flags().Bool("recent", false, "Show only the most recent sessions")
	sessionsCmd.Flags().Int("page", 1, "Page number")
	sessionsCmd.Flags().Int("size", 20, "Page size")
}
