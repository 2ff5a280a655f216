package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/snippy/internal/client"
)

var editCmd = &cobra.Command{
	Use:   "edit <id-prefix>",
	Short: "Edit one of your snippets",
	Long:  `Change a snippet's title, language or content. Without --title, --language or --file the content opens in $EDITOR.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}

		list := client.NewListState(apiClient)
		s, err := findSnippet(cmd.Context(), list, args[0])
		if err != nil {
			return err
		}

		form := client.NewFormController(apiClient, list)
		form.Edit(s)

		flags := cmd.Flags()
		if flags.Changed("title") {
			title, _ := flags.GetString("title")
			form.SetTitle(title)
		}
		if flags.Changed("language") {
			lang, _ := flags.GetString("language")
			form.SetLanguage(lang)
		}
		file, _ := flags.GetString("file")
		if file != "" || (!flags.Changed("title") && !flags.Changed("language")) {
			lang := ""
			if l := form.Input().Language; l != nil {
				lang = *l
			}
			content, err := readContent(cmd, file, s.Content, lang)
			if err != nil {
				return err
			}
			form.SetContent(content)
		}

		updated, err := form.Submit(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to update snippet: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Updated snippet %s", shortID(updated.ID))))
		return nil
	},
}

func init() {
	editCmd.Flags().StringP("title", "t", "", "new title")
	editCmd.Flags().StringP("language", "l", "", `new language tag, "" for none`)
	editCmd.Flags().StringP("file", "f", "", "read new content from file")
	rootCmd.AddCommand(editCmd)
}
