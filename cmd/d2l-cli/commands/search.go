package commands

import (
	"fmt"
	"valence/internal/search"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchLimit *int

func init() {
	searchLimit = searchCmd.Flags().IntP("limit", "n", 10, "The maximum amount of results.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query> [-n <limit>]",
	Short: "Fuzzy searches the cached courses, content, coursework and announcements.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStorage(cmd.Context(), getState(cmd.Context()))
		if err != nil {
			return err
		}
		defer store.Close()

		idx := search.FromCache(cmd.Context(), store.cache)
		if idx.Len() == 0 {
			return fmt.Errorf("nothing is cached yet, run `d2l-cli preload` first")
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Score", "Kind", "Course", "Title", "Link"})
		for _, result := range idx.Search(args[0], *searchLimit) {
			t.AppendRow(table.Row{
				fmt.Sprintf("%.2f", result.Score),
				result.Kind,
				result.Course,
				result.Title,
				result.Link,
			})
		}
		t.Render()
		return nil
	},
}
