package commands

import (
	"context"
	"fmt"
	"strings"
	"valence/internal/cache"
	"valence/internal/scrapers/d2l/parse"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(assignmentsCmd)
	rootCmd.AddCommand(quizzesCmd)
	rootCmd.AddCommand(submissionsCmd)
	rootCmd.AddCommand(previewCmd)
}

// fetchCourse runs a cached fetch for a per course value, a failed
// refresh still shows the cached value.
func fetchCourse[T any](
	cmd *cobra.Command,
	a *app,
	key cache.Key,
	courseId string,
	producer func(ctx context.Context, courseId string) (T, error),
) (T, error) {
	value, err := cache.Fetch(
		cmd.Context(),
		a.cache,
		key,
		func(ctx context.Context) (T, error) {
			return producer(ctx, courseId)
		},
		nil,
	)
	if err != nil {
		if _, hit := cache.Get[T](cmd.Context(), a.cache, key); !hit {
			return value, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "showing cached data: %v\n", err)
	}
	return value, nil
}

var assignmentsCmd = &cobra.Command{
	Use:   "assignments <course-id>",
	Short: "Lists the assignments of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		assignments, err := fetchCourse(cmd, a, cache.AssignmentsKey(args[0]), args[0], a.client.Assignments)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Id", "Name", "Due", "Status", "Score", "Grade", "Tags"})
		for _, assignment := range assignments {
			t.AppendRow(table.Row{
				assignment.Id,
				assignment.Name,
				formatDate(assignment.DueDate),
				assignment.Status,
				formatFraction(assignment.Points, assignment.TotalPoints),
				formatPercent(assignment.GradePercentage),
				strings.Join(assignment.Tags, ", "),
			})
		}
		t.Render()
		return nil
	},
}

var quizzesCmd = &cobra.Command{
	Use:   "quizzes <course-id>",
	Short: "Lists the quizzes of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		quizzes, err := fetchCourse(cmd, a, cache.QuizzesKey(args[0]), args[0], a.client.Quizzes)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Id", "Name", "Due", "Status", "Attempts"})
		for _, quiz := range quizzes {
			attempts := "-"
			if quiz.Attempts != nil {
				attempts = fmt.Sprint(*quiz.Attempts)
				if quiz.AttemptsAllowed != nil {
					attempts += fmt.Sprintf("/%d", *quiz.AttemptsAllowed)
				}
			}
			t.AppendRow(table.Row{
				quiz.Id,
				quiz.Name,
				formatDate(quiz.DueDate),
				quiz.Status,
				attempts,
			})
		}
		t.Render()
		return nil
	},
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions <course-id> <quiz-id>",
	Short: "Lists the submitted attempts of a quiz.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		submissions, err := a.client.QuizSubmissions(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Attempt", "Score", "Grade", "Late", "Url"})
		for _, submission := range submissions {
			t.AppendRow(table.Row{
				submission.AttemptNumber,
				formatFraction(submission.Points, submission.TotalPoints),
				formatPercent(submission.GradePercentage),
				submission.LateNote,
				submission.AttemptUrl,
			})
		}
		t.Render()
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <course-id> <topic-id>",
	Short: "Prints the direct url of a file topic.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.client.FilePreview(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func gradeRow(item parse.GradeItem, indent string) table.Row {
	name := indent + item.Name
	if item.Score.IsDropped {
		name += " (dropped)"
	}
	return table.Row{
		item.Id,
		name,
		formatFraction(item.Score.Points, item.Score.TotalPoints),
		formatFraction(item.Score.WeightAchieved, item.Score.WeightTotal),
		formatPercent(item.Score.Percentage),
	}
}
