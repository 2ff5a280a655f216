package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the language tags the server accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		langs, def, err := apiClient.Languages(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load languages: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, l := range langs {
			marker := " "
			if l.Value == def {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-12s %s\n", marker, l.Value, faint(l.Label))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
