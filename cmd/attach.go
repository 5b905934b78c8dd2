package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alstlr0307/interviewmon-front/internal/api"
)

var attachCmd = &cobra.Command{
	Use:   "attach <session-id> <question>...",
	Short: "Attach custom questions to a session",
	Args:  cobra.MinimumNArgs(2),
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

		category, _ := cmd.Flags().GetString("category")
		replace, _ := cmd.Flags().GetBool("replace")

		items := make([]api.AttachItem, 0, len(args)-1)
		for _, text := range args[1:] {
			items = append(items, api.AttachItem{Text: text, Category: category})
		}

		attached, err := client.AttachQuestions(cmd.Context(), sessionID, items, replace)
		if err != nil {
			return err
		}
		fmt.Printf("session %d now has %d questions\n", sessionID, len(attached))
		return nil
	},
}

func init() {
	attachCmd.Flags().String("category", "", "Category label for the attached questions")
	attachCmd.Flags().Bool("replace", false, "Replace the session's question set instead of appending")
}
