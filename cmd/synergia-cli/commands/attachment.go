package commands

import (
	"os"

	"synergia-backend/lib/scrapers/synergia/inbox"
	"synergia-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	attachmentPath *string
	attachmentOut  *string
)

func init() {
	attachmentPath = attachmentCmd.Flags().String("path", "", "The attachment path as listed on a message.")
	attachmentOut = attachmentCmd.Flags().String("out", "", "The file to write the attachment to.")
	attachmentCmd.MarkFlagRequired("path")
	attachmentCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(attachmentCmd)
}

var attachmentCmd = &cobra.Command{
	Use:   "attachment --path <p> --out <file>",
	Short: "Downloads a message attachment to a local file.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := inbox.NewClient(newClient(ctx))

		contents, err := client.GetAttachment(ctx, inbox.Attachment{Path: *attachmentPath})
		if err != nil {
			serviceutil.Fatal("failed to download attachment", err)
		}
		if err := os.WriteFile(*attachmentOut, contents, 0644); err != nil {
			serviceutil.Fatal("failed to write attachment", err)
		}
	},
}
