package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bookingform/internal/database"
	"bookingform/internal/form"
	"bookingform/internal/repository"
)

// submissions: list recent outbox rows.
func submissionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "List recent submissions from the outbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("no database configured. set DATABASE_URL")
			}
			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			rows, err := repository.NewSubmissionRepository(db).ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFORM\tATTEMPT\tNAME\tROOM\tCHECK-IN\tCHECK-OUT\tSTATUS")
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.FormID, r.Attempt, r.UserName, r.RoomType,
					r.CheckInDate.Format(form.DateLayout), r.CheckOutDate.Format(form.DateLayout), r.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "rows to show (max 100)")
	return cmd
}
