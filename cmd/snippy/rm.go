package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/snippy/internal/client"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id-prefix>",
	Short: "Remove a snippet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		list := client.NewListState(apiClient)
		s, err := findSnippet(cmd.Context(), list, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !force {
			fmt.Fprintf(out, "Delete snippet %q (%s)? [y/N] ", s.Title, shortID(s.ID))
			response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		form := client.NewFormController(apiClient, list)
		if err := form.Delete(cmd.Context(), s.ID); err != nil {
			return fmt.Errorf("failed to delete snippet: %w", err)
		}
		fmt.Fprintln(out, success(fmt.Sprintf("Deleted snippet %s", shortID(s.ID))))
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(rmCmd)
}
