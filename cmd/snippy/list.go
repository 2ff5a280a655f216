package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/snippy/internal/client"
	"github.com/sakif/snippy/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your snippets, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("search")
		return runList(cmd, query)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "List snippets whose title, content or language contains query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args[0])
	},
}

func runList(cmd *cobra.Command, query string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	list := client.NewListState(apiClient)
	list.SetQuery(query)

	var owner *model.User
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		u, err := apiClient.Me(ctx)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		owner = u
		return nil
	})
	g.Go(func() error {
		if _, err := list.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to list snippets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printList(cmd.OutOrStdout(), owner.Email, query, list.Visible(), len(list.Snippets()))
	return nil
}

func printList(w io.Writer, owner, query string, visible []model.Snippet, total int) {
	switch {
	case total == 0:
		fmt.Fprintln(w, faint("No snippets yet. Add one with `snippy add`."))
		return
	case len(visible) == 0:
		fmt.Fprintln(w, faint(fmt.Sprintf("No snippets match %q.", query)))
		return
	}

	if query != "" {
		fmt.Fprintf(w, "%s %s\n\n", faint(fmt.Sprintf("%d of %d snippets for", len(visible), total)), bold(owner))
	} else {
		fmt.Fprintf(w, "%s %s\n\n", faint(fmt.Sprintf("%d snippets for", total)), bold(owner))
	}
	for _, s := range visible {
		fmt.Fprint(w, formatListItem(s))
	}
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "only show snippets matching this query")
	rootCmd.AddCommand(listCmd, searchCmd)
}
