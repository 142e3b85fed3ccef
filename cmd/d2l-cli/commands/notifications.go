package commands

import (
	"fmt"
	"time"
	"valence/internal/notifications"
	"valence/internal/scrapers/d2l"
	"valence/internal/scrapers/d2l/parse"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const (
	lookupSize = 64
	lookupTTL  = 10 * time.Minute
)

var (
	notificationsCategory *string
	notificationsPages    *int
	notificationsWatch    *bool
	notificationsMarkRead *bool
)

func init() {
	flags := notificationsCmd.Flags()
	notificationsCategory = flags.String("category", "updates", "The feed to read, either updates or subscriptions.")
	notificationsPages = flags.Int("pages", 1, "The amount of feed pages to load.")
	notificationsWatch = flags.BoolP("watch", "w", false, "Keep polling the feed and print new entries as they come in.")
	notificationsMarkRead = flags.Bool("mark-read", false, "Mark every entry of the feed as read.")
	rootCmd.AddCommand(notificationsCmd)
}

func parseCategory(value string) (parse.Category, error) {
	switch value {
	case "updates", "":
		return parse.CategoryUpdates, nil
	case "subscriptions":
		return parse.CategorySubscriptions, nil
	default:
		return 0, fmt.Errorf("unknown feed category '%s'", value)
	}
}

func openFeeds(a *app) *notifications.Feeds {
	lookup := notifications.NewTreeLookup(a.client, a.cache, lookupSize, lookupTTL, a.tel)
	return notifications.Default(a.client, lookup, a.tel)
}

func renderNotifications(t table.Writer, items []notifications.Notification) {
	for _, item := range items {
		link := item.Link
		if link == "" {
			link = item.ExternalLink
		}
		t.AppendRow(table.Row{
			item.Timestamp.Local().Format("Jan 2 15:04"),
			item.Type,
			item.Course,
			item.Title,
			link,
		})
	}
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications [org-unit-id] [--category <updates|subscriptions>] [--watch] [--mark-read]",
	Short: "Prints the activity feed of a course, or of every course when no id is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := parseCategory(*notificationsCategory)
		if err != nil {
			return err
		}
		orgUnit := d2l.RootOrgUnit
		if len(args) > 0 {
			orgUnit = args[0]
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		feed := openFeeds(a).Get(orgUnit, category)
		for i := 0; i < max(*notificationsPages, 1); i++ {
			page, err := feed.GetMoreFeed(cmd.Context())
			if err != nil {
				return err
			}
			if len(page) == 0 {
				break
			}
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"When", "Type", "Course", "Title", "Link"})
		renderNotifications(t, feed.Items())
		t.Render()

		if *notificationsMarkRead {
			if !feed.MarkAllAsRead(cmd.Context()) {
				return fmt.Errorf("the LMS did not accept marking the feed as read")
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "marked all entries as read")
		}
		if !*notificationsWatch {
			return nil
		}

		updates := make(chan struct{}, 1)
		unsubscribe := feed.SubscribeToUpdates(func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		fmt.Fprintln(cmd.ErrOrStderr(), "watching for new activity, press ctrl+c to stop")
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case <-updates:
			}
			fresh, err := feed.GetNewest(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				continue
			}
			t := newTable(cmd.OutOrStdout())
			renderNotifications(t, fresh)
			t.Render()
		}
	},
}
