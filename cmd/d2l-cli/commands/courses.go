package commands

import (
	"context"
	"fmt"
	"valence/internal/cache"
	"valence/internal/scrapers/d2l/parse"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var coursesActiveOnly *bool

func init() {
	coursesActiveOnly = coursesCmd.Flags().Bool("active", false, "Only list courses that are currently active.")
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(treeCmd)
}

var coursesCmd = &cobra.Command{
	Use:   "courses [--active]",
	Short: "Lists the courses the user is enrolled in.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		courses, err := cache.Fetch(cmd.Context(), a.cache, cache.CoursesKey(), a.client.Enrollments, nil)
		if err != nil && len(courses) == 0 {
			return err
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "showing cached courses: %v\n", err)
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Id", "Code", "Name", "Start", "End", "Active"})
		for _, course := range courses {
			if *coursesActiveOnly && !course.IsActive {
				continue
			}
			t.AppendRow(table.Row{
				course.Id,
				course.Code,
				course.Name,
				formatDate(course.StartDate),
				formatDate(course.EndDate),
				course.IsActive,
			})
		}
		t.Render()
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <course-id>",
	Short: "Prints the content tree of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		courseId := args[0]
		tree, err := cache.Fetch(
			cmd.Context(),
			a.cache,
			cache.ContentTreeKey(courseId),
			func(ctx context.Context) ([]parse.ModuleNode, error) {
				return a.client.ContentTree(ctx, courseId)
			},
			nil,
		)
		if err != nil && tree == nil {
			return err
		}

		l := list.NewWriter()
		l.SetStyle(list.StyleConnectedRounded)
		l.SetOutputMirror(cmd.OutOrStdout())
		for _, module := range tree {
			appendModule(l, module)
		}
		l.Render()
		return nil
	},
}

func appendModule(l list.Writer, module parse.ModuleNode) {
	l.AppendItem(fmt.Sprintf("%s (module %s)", module.Title, module.Id))
	l.Indent()
	for _, topic := range module.Topics {
		due := ""
		if topic.DueDate != nil {
			due = ", due " + formatDate(topic.DueDate)
		}
		l.AppendItem(fmt.Sprintf("%s (%s %s%s)", topic.Title, topic.Type, topic.Id, due))
	}
	for _, child := range module.Children {
		appendModule(l, child)
	}
	l.UnIndent()
}
