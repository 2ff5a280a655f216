package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to the server",
	Long:  `Sign in with email and password. The password is read from --password or, when absent, from the first line of stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, args[0], false)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, args[0], true)
	},
}

func authenticate(cmd *cobra.Command, email string, register bool) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		password = p
	}

	signIn := apiClient.SignIn
	if register {
		signIn = apiClient.SignUp
	}
	s, err := signIn(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	session.Email, session.Token = s.User.Email, s.Token
	if err := session.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Signed in as %s", s.User.Email)))
	return nil
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if session.Token != "" {
			// best effort; the token is dropped locally either way
			_ = apiClient.SignOut(cmd.Context())
		}
		if err := session.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), success("Signed out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		u, err := apiClient.Me(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		name := u.Email
		if name == "" {
			name = u.Login
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s %s\n", bold(name), faint("("+u.ID+")"), faint("Server:"), session.Server)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("password", "p", "", "password (read from stdin when empty)")
	registerCmd.Flags().StringP("password", "p", "", "password (read from stdin when empty)")
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
