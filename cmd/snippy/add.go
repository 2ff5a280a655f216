package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/snippy/internal/client"
	"github.com/sakif/snippy/internal/language"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new snippet",
	Long:  `Create a snippet with the given title. Content comes from --file, from stdin when it is not a terminal, or from $EDITOR.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		lang, _ := cmd.Flags().GetString("language")
		file, _ := cmd.Flags().GetString("file")

		content, err := readContent(cmd, file, "", lang)
		if err != nil {
			return err
		}

		form := client.NewFormController(apiClient, nil)
		form.SetTitle(args[0])
		form.SetContent(content)
		if cmd.Flags().Changed("language") {
			form.SetLanguage(lang)
		}

		s, err := form.Submit(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to add snippet: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Added snippet %s", shortID(s.ID))))
		return nil
	},
}

// readContent takes the snippet body from file, from piped stdin, or from
// $EDITOR seeded with initial.
func readContent(cmd *cobra.Command, file, initial, lang string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file) //nolint:gosec // user-chosen path
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	if f, ok := cmd.InOrStdin().(*os.File); !ok || !isTerminal(f) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	content, err := openEditor(initial, lang)
	if err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}
	return content, nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// openEditor edits initial in $EDITOR (vi when unset). The temp file gets
// an extension matching lang so editors pick the right syntax.
func openEditor(initial, lang string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	tmpFile, err := os.CreateTemp("", "snippy-*"+extensionFor(lang))
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	if initial != "" {
		if _, err := tmpFile.WriteString(initial); err != nil {
			_ = tmpFile.Close()
			return "", fmt.Errorf("failed to write initial content: %w", err)
		}
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.Command(editor, tmpFile.Name()) //nolint:gosec // launching $EDITOR
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Clean(tmpFile.Name()))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var extensions = map[string]string{
	"javascript": ".js",
	"typescript": ".ts",
	"python":     ".py",
	"java":       ".java",
	"cpp":        ".cpp",
	"rust":       ".rs",
	"go":         ".go",
	"php":        ".php",
	"ruby":       ".rb",
	"swift":      ".swift",
	"html":       ".html",
	"css":        ".css",
	"json":       ".json",
	"sql":        ".sql",
	"markdown":   ".md",
}

func extensionFor(lang string) string {
	l, ok := language.Lookup(lang)
	if !ok {
		return ".txt"
	}
	return extensions[l.Value]
}

func init() {
	addCmd.Flags().StringP("language", "l", language.Default().Value, `language tag, "" for none`)
	addCmd.Flags().StringP("file", "f", "", "read content from file")
	rootCmd.AddCommand(addCmd)
}
