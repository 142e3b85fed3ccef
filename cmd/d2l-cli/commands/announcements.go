package commands

import (
	"fmt"
	"valence/internal/cache"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var announcementsLimit *int

func init() {
	announcementsLimit = announcementsCmd.Flags().IntP("limit", "n", 5, "The amount of announcements to print, 0 prints all of them.")
	rootCmd.AddCommand(announcementsCmd)
	rootCmd.AddCommand(calendarCmd)
}

var announcementsCmd = &cobra.Command{
	Use:   "announcements <course-id> [-n <limit>]",
	Short: "Prints the announcements of a course as markdown.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		announcements, err := fetchCourse(cmd, a, cache.AnnouncementsKey(args[0]), args[0], a.client.Announcements)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, announcement := range announcements {
			if *announcementsLimit > 0 && i >= *announcementsLimit {
				break
			}
			fmt.Fprintf(out, "# %s\n\n", announcement.Title)
			if announcement.Author != "" {
				fmt.Fprintf(out, "_%s, %s_\n\n", announcement.Author, formatDate(announcement.StartDate))
			}
			fmt.Fprintln(out, markdown(announcement.Body.Html, announcement.Body.Text))
			for _, attachment := range announcement.Attachments {
				fmt.Fprintf(out, "- [%s](%s)\n", attachment.Name, a.client.Resolve(attachment.Url))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar <ics-feed-url>",
	Short: "Lists the events of a calendar subscription feed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.client.Calendar(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Course", "Title", "Start", "End"})
		for _, event := range events {
			t.AppendRow(table.Row{
				event.CourseId,
				event.Title,
				formatDate(&event.Start),
				formatDate(&event.End),
			})
		}
		t.Render()
		return nil
	},
}
