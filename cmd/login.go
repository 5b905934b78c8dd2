package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alstlr0307/interviewmon-front/internal/api"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the InterviewMon backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, client, err := openState(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			fmt.Print("email: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			email = strings.TrimSpace(line)
		}

		password := os.Getenv("INTERVIEWMON_PASSWORD")
		if password == "" {
			fmt.Print("password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return err
			}
			password = string(raw)
		}

		if err := client.Login(cmd.Context(), api.Credentials{Email: email, Password: password}); err != nil {
			return err
		}
		fmt.Println("logged in")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear local tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, client, err := openState(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := client.Logout(cmd.Context()); err != nil {
			// Tokens are already cleared locally; the server call is
			// best-effort.
			fmt.Println("logged out locally")
			return nil
		}
		fmt.Println("logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
}
