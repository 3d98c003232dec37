package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingform/internal/database"
	"bookingform/internal/domain"
	"bookingform/internal/repository"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSubmissionsCmd_ListsOutbox(t *testing.T) {
	dsn := "file:bookingctl_submissions?mode=memory&cache=shared"
	t.Setenv("DATABASE_URL", dsn)
	t.Setenv("LOG_LEVEL", "error")

	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, repository.NewSubmissionRepository(db).Create(context.Background(), &domain.Submission{
		FormID:       "form-1",
		Attempt:      1,
		UserName:     "Alice",
		Email:        "alice@example.com",
		RoomType:     "luxury",
		CheckInDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Status:       domain.SubmissionPending,
	}))

	out, err := run(t, "submissions", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "form-1")
	assert.Contains(t, out, "2024-06-01")
	assert.Contains(t, out, "pending")
}

func TestRootCmd_RejectsBadConfig(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")

	_, err := run(t, "submissions")
	assert.ErrorContains(t, err, "LOG_FORMAT")
}

func TestRootCmd_ListsSubcommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "fill", "submissions"} {
		assert.Contains(t, out, name)
	}
}
