package commands

import (
	"fmt"
	"strconv"
	"strings"

	"synergia-backend/lib/scrapers/synergia/absence"
	"synergia-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var absenceId *int

func init() {
	absenceId = absenceCmd.Flags().Int("id", 0, "The id of the absence detail page to fetch.")
	absenceCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(absencesCmd)
	rootCmd.AddCommand(absenceCmd)
}

var absencesCmd = &cobra.Command{
	Use:   "absences",
	Short: "Lists all absences from the absence overview page.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := absence.NewClient(newClient(ctx))

		days, err := client.GetAbsences(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch absences", err)
		}

		rows := make([][]string, len(days))
		for i, day := range days {
			entries := make([]string, len(day.Entries))
			for j, e := range day.Entries {
				entries[j] = fmt.Sprintf("%s (%d)", e.Type, e.Id)
			}
			rows[i] = []string{
				day.Date,
				strconv.Itoa(day.Semester),
				strings.Join(entries, ", "),
				strings.Join(day.Info, " | "),
			}
		}
		emit(days, []string{"date", "semester", "absences", "info"}, rows)
	},
}

var absenceCmd = &cobra.Command{
	Use:   "absence --id <n>",
	Short: "Fetches the detail page of a single absence.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := absence.NewClient(newClient(ctx))

		detail, err := client.GetAbsence(ctx, *absenceId)
		if err != nil {
			serviceutil.Fatal("failed to fetch absence", err)
		}

		emit(detail,
			[]string{"type", "category", "date", "subject", "lesson hour", "teacher", "trip", "added by"},
			[][]string{{
				detail.Type, detail.Category, detail.Date, detail.Subject,
				detail.LessonHour, detail.Teacher, strconv.FormatBool(detail.Trip), detail.AddedBy,
			}})
	},
}
