package threatlog_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/threatlog"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresSink_Write(t *testing.T) {
	t.Parallel()

	db := &fakeExecer{}
	sink := threatlog.NewPostgresSink(db)

	r := sampleRecord("AAAAAAAAAAAA")
	require.NoError(t, sink.Write(context.Background(), r))
	require.Len(t, db.calls, 1)

	call := db.calls[0]
	assert.True(t, strings.HasPrefix(call.sql, "INSERT INTO waf_threats"))
	require.Len(t, call.args, 11)
	assert.Equal(t, "AAAAAAAAAAAA", call.args[0])
	assert.Equal(t, r.Timestamp, call.args[2])
	assert.Equal(t, r.InputLength, call.args[10])
}

func TestPostgresSink_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("relation does not exist")
	err := threatlog.NewPostgresSink(&fakeExecer{err: boom}).Write(context.Background(), sampleRecord("A"))
	assert.ErrorIs(t, err, boom)
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(threatlog.Migrations(), "00001_create_waf_threats.sql")
	require.NoError(t, err)

	sql := string(data)
	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS waf_threats")
	for _, col := range []string{"incident_id", "request_id", "occurred_at", "input_sample", "input_length"} {
		assert.Contains(t, sql, col)
	}
}
