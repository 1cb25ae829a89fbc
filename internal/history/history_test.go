package history

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_NewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(3)

	for _, iface := range []string{"all", "eth0", "wlan0", "eth1"} {
		require.NoError(t, m.Record(ctx, Run{Interface: iface}))
	}

	runs, err := m.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "eth1", runs[0].Interface)
	assert.Equal(t, "wlan0", runs[1].Interface)
	assert.Equal(t, "eth0", runs[2].Interface)
	assert.Equal(t, int64(4), runs[0].ID)

	runs, err = m.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "eth1", runs[0].Interface)
}

func TestMemoryStore_Empty(t *testing.T) {
	runs, err := NewMemoryStore(5).Recent(context.Background(), 20)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	r := Run{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}
	assert.Equal(t, 90*time.Second, r.Duration())
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestSQLStore_Migrate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS scan_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewSQLStore(db, Postgres).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Record(t *testing.T) {
	db, mock := newMock(t)
	start := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	run := Run{
		Interface:  "eth0",
		Outcome:    "ScriptFailed",
		Message:    "Scan script failed to execute.",
		ExitCode:   2,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scan_runs")).
		WithArgs("eth0", "ScriptFailed", "Scan script failed to execute.", 2, start, start.Add(time.Second)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewSQLStore(db, MySQL).Record(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_RecordError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scan_runs")).WillReturnError(errors.New("connection reset"))

	err := NewSQLStore(db, Postgres).Record(context.Background(), Run{Interface: "all"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSQLStore_Recent(t *testing.T) {
	db, mock := newMock(t)
	start := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "interface", "outcome", "message", "exit_code", "started_at", "finished_at"}).
		AddRow(2, "eth0", "Success", "Scan completed.", 0, start, start.Add(time.Minute)).
		AddRow(1, "all", "Timeout", "Scan script timed out after 5 minutes.", -1, start, start.Add(5*time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, interface, outcome")).WithArgs(20).WillReturnRows(rows)

	runs, err := NewSQLStore(db, Postgres).Recent(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(2), runs[0].ID)
	assert.Equal(t, "Success", runs[0].Outcome)
	assert.Equal(t, time.Minute, runs[0].Duration())
	assert.Equal(t, "Timeout", runs[1].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("mysql")
	require.NoError(t, err)
	assert.Contains(t, d.Insert, "?")

	d, err = DialectFor("postgres")
	require.NoError(t, err)
	assert.Contains(t, d.Insert, "$1")

	_, err = DialectFor("sqlite")
	assert.Error(t, err)
}

func TestMySQLDSNForcesParseTime(t *testing.T) {
	dsn, err := mysqlDSN("netscan:secret@tcp(127.0.0.1:3306)/netscan")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = mysqlDSN("not a dsn")
	assert.Error(t, err)
}

func TestOpen_MemoryDefault(t *testing.T) {
	s, err := Open(context.Background(), "memory", "", 10)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}
