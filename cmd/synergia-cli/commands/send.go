package commands

import (
	"synergia-backend/lib/scrapers/synergia/inbox"
	"synergia-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	sendTo      *int
	sendTitle   *string
	sendContent *string
)

func init() {
	sendTo = sendCmd.Flags().Int("to", 0, "The recipient's user id (see the receivers command).")
	sendTitle = sendCmd.Flags().String("title", "", "The message title.")
	sendContent = sendCmd.Flags().String("content", "", "The message body.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("title")
	sendCmd.MarkFlagRequired("content")
	rootCmd.AddCommand(sendCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send --to <user id> --title <title> --content <body>",
	Short: "Sends a message and prints the portal's confirmation.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := inbox.NewClient(newClient(ctx))

		confirmation, err := client.SendMessage(ctx, *sendTo, *sendTitle, *sendContent)
		if err != nil {
			serviceutil.Fatal("failed to send message", err)
		}
		printJSON(map[string]string{"confirmation": confirmation})
	},
}
