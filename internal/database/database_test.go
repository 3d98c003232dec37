package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingform/internal/domain"
)

func TestConnect_SQLiteMemory(t *testing.T) {
	db, err := Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&domain.Submission{}))
	assert.Equal(t, "sqlite", db.Dialector.Name())
}
