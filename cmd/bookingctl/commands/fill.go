package commands

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"bookingform/internal/app"
	"bookingform/internal/database"
	"bookingform/internal/form"
	"bookingform/internal/gateway"
	"bookingform/internal/repository"
	"bookingform/internal/tui"
)

// fill: complete one booking in the terminal and hand it to the gateway.
func fillCmd() *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill in a booking form interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var submissions *repository.SubmissionRepository
			if cfg.DatabaseURL != "" && !noStore {
				db, err := database.Connect(cfg.DatabaseURL)
				if err != nil {
					return err
				}
				if err := database.Migrate(db); err != nil {
					return err
				}
				submissions = repository.NewSubmissionRepository(db)
			}

			id := uuid.NewString()
			eng := form.New(app.NewGateway(cfg, submissions), form.WithLogger(log.WithField("form_id", id)))

			p, err := tui.Fill(gateway.WithForm(cmd.Context(), id, 1), tui.NewSurveyPrompter(), eng)
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "booking cancelled")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "booked %s room for %s, %s to %s (%d nights)\n",
				p.RoomType.Label(), p.UserName,
				p.CheckInDate.Format(form.DateLayout), p.CheckOutDate.Format(form.DateLayout), p.Nights())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "skip the submission outbox")
	return cmd
}
