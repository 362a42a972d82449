package commands

import (
	"strconv"

	"synergia-backend/lib/scrapers/synergia/inbox"
	"synergia-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var receiversGroup *int

func init() {
	receiversGroup = receiversCmd.Flags().Int("group", 0, "The recipient group to expand.")
	receiversCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(receiversCmd)
}

var receiversCmd = &cobra.Command{
	Use:   "receivers --group <n>",
	Short: "Lists the message recipients available in a group.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := inbox.NewClient(newClient(ctx))

		receivers, err := client.ListReceivers(ctx, *receiversGroup)
		if err != nil {
			serviceutil.Fatal("failed to list receivers", err)
		}

		rows := make([][]string, len(receivers))
		for i, r := range receivers {
			rows[i] = []string{strconv.Itoa(r.Id), r.User}
		}
		emit(receivers, []string{"id", "user"}, rows)
	},
}
