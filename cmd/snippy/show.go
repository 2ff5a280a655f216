package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/snippy/internal/client"
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Print a snippet with syntax highlighting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")

		s, err := findSnippet(cmd.Context(), client.NewListState(apiClient), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if raw {
			fmt.Fprint(out, s.Content)
			return nil
		}
		fmt.Fprint(out, formatHeader(s))
		fmt.Fprint(out, formatContent(s))
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "print the content only, without formatting")
	rootCmd.AddCommand(showCmd)
}
