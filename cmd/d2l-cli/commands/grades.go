package commands

import (
	"valence/internal/cache"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	gradesCmd.AddCommand(gradeStatsCmd)
	rootCmd.AddCommand(gradesCmd)
}

var gradesCmd = &cobra.Command{
	Use:   "grades <course-id>",
	Short: "Prints the gradebook of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		gradebook, err := fetchCourse(cmd, a, cache.GradesKey(args[0]), args[0], a.client.Grades)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Id", "Item", "Points", "Weight", "Grade"})
		for _, category := range gradebook.Categories {
			t.AppendRow(gradeRow(category.GradeItem, ""))
			for _, item := range category.Items {
				t.AppendRow(gradeRow(item, "  "))
			}
			t.AppendSeparator()
		}
		for _, item := range gradebook.Uncategorized {
			t.AppendRow(gradeRow(item, ""))
		}
		t.Render()
		return nil
	},
}

var gradeStatsCmd = &cobra.Command{
	Use:   "stats <course-id> <grade-item-id>",
	Short: "Prints the class statistics of a grade item.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.client.GradeStatistics(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendRows([]table.Row{
			{"Average", formatNumber(stats.Average)},
			{"Minimum", formatNumber(stats.Minimum)},
			{"Maximum", formatNumber(stats.Maximum)},
			{"Mode", formatNumber(stats.Mode)},
			{"Median", formatNumber(stats.Median)},
			{"Standard deviation", formatNumber(stats.StandardDeviation)},
			{"Count", formatNumber(stats.Count)},
		})
		t.Render()
		return nil
	},
}
