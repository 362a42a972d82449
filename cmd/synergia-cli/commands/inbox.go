package commands

import (
	"strconv"

	"synergia-backend/lib/scrapers/synergia/inbox"
	"synergia-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var inboxFolder *int

func init() {
	inboxFolder = inboxCmd.Flags().Int("folder", 5, "The message folder to list.")
	rootCmd.AddCommand(inboxCmd)
}

var inboxCmd = &cobra.Command{
	Use:   "inbox [--folder <n>]",
	Short: "Lists the messages of a folder.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := inbox.NewClient(newClient(ctx))

		entries, err := client.ListInbox(ctx, *inboxFolder)
		if err != nil {
			serviceutil.Fatal("failed to list inbox", err)
		}

		rows := make([][]string, len(entries))
		for i, entry := range entries {
			rows[i] = []string{
				strconv.Itoa(entry.Id),
				entry.User,
				entry.Title,
				entry.Date,
				strconv.FormatBool(entry.Read),
			}
		}
		emit(entries, []string{"id", "user", "title", "date", "read"}, rows)
	},
}
