package commands

import (
	"strconv"

	"synergia-backend/lib/scrapers/synergia/inbox"
	"synergia-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	messageId     *int
	messageFolder *int
	removeId      *int
)

func init() {
	messageId = messageCmd.Flags().Int("id", 0, "The id of the message to fetch.")
	messageFolder = messageCmd.Flags().Int("folder", 5, "The folder containing the message.")
	messageCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(messageCmd)

	removeId = removeCmd.Flags().Int("id", 0, "The id of the message to remove.")
	removeCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(removeCmd)
}

var messageCmd = &cobra.Command{
	Use:   "message --id <n> [--folder <n>]",
	Short: "Fetches a single message with its body and attachments.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := inbox.NewClient(newClient(ctx))

		message, err := client.GetMessage(ctx, *messageFolder, *messageId)
		if err != nil {
			serviceutil.Fatal("failed to fetch message", err)
		}

		emit(message,
			[]string{"id", "user", "title", "date", "read", "attachments"},
			[][]string{{
				strconv.Itoa(message.Id),
				message.User,
				message.Title,
				message.Date,
				strconv.FormatBool(message.Read),
				strconv.Itoa(len(message.Files)),
			}})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove --id <n>",
	Short: "Removes a message and prints the portal's confirmation.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := inbox.NewClient(newClient(ctx))

		confirmation, err := client.RemoveMessage(ctx, *removeId)
		if err != nil {
			serviceutil.Fatal("failed to remove message", err)
		}
		printJSON(map[string]string{"confirmation": confirmation})
	},
}
