package commands

import (
	"strings"

	"synergia-backend/lib/scrapers/synergia/grade"
	"synergia-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gradesCmd)
}

var gradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "Lists all grades from the grade overview page, grouped by subject.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := grade.NewClient(newClient(ctx))

		subjects, err := client.GetGrades(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch grades", err)
		}

		rows := make([][]string, len(subjects))
		for i, subject := range subjects {
			values := make([]string, len(subject.Grades))
			for j, g := range subject.Grades {
				values[j] = g.Value
			}
			rows[i] = []string{subject.Subject, strings.Join(values, " ")}
		}
		emit(subjects, []string{"subject", "grades"}, rows)
	},
}
