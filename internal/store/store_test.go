package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatementsOnSchema(t *testing.T) {
	stmts := splitStatements(Schema)

	// 6 tabulek + 5 indexů
	require.Len(t, stmts, 11)
	for _, s := range stmts {
		assert.NotContains(t, s, ";")
		assert.False(t, onlyComments(s))
	}
	assert.True(t, strings.Contains(stmts[0], "CREATE TABLE IF NOT EXISTS bins"))
}

func TestSplitStatementsSkipsEmptyAndComments(t *testing.T) {
	got := splitStatements("SELECT 1;\n\n;  -- jen komentář\n; SELECT 2;")
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, got)
}

func TestWrapInsertErrorForeignKey(t *testing.T) {
	err := wrapInsertError("measurements", &pgconn.PgError{Code: "23503", ConstraintName: "measurements_sensor_id_fkey"})
	assert.ErrorIs(t, err, ErrUnknownReference)
	assert.Contains(t, err.Error(), "measurements_sensor_id_fkey")

	other := wrapInsertError("measurements", errors.New("connection reset"))
	assert.NotErrorIs(t, other, ErrUnknownReference)
	assert.Contains(t, other.Error(), "connection reset")
}
