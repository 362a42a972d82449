package commands

import (
	"synergia-backend/lib/scrapers/synergia/inbox"
	"synergia-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(announcementsCmd)
}

var announcementsCmd = &cobra.Command{
	Use:   "announcements",
	Short: "Lists all announcements from the announcement board.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := inbox.NewClient(newClient(ctx))

		announcements, err := client.ListAnnouncements(ctx)
		if err != nil {
			serviceutil.Fatal("failed to list announcements", err)
		}

		rows := make([][]string, len(announcements))
		for i, a := range announcements {
			rows[i] = []string{a.Title, a.User, a.Date, a.Content}
		}
		emit(announcements, []string{"title", "user", "date", "content"}, rows)
	},
}
