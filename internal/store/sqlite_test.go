package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrodrigc/campuseats-client/models"
)

const (
	upsertQuery = "INSERT INTO client_state (key,payload,stored_at) VALUES (?,?,?) ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at"
	selectQuery = "SELECT payload, stored_at FROM client_state WHERE key = ?"
	deleteQuery = "DELETE FROM client_state WHERE key = ?"
)

func newTestStore(t *testing.T) (*sqliteStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db, "campuseats", time.Hour).(*sqliteStore)
	return s, mock
}

func TestSQLiteStore_SaveSnapshot_SingleKeyUpsert(t *testing.T) {
	s, mock := newTestStore(t)

	snap := models.Snapshot{
		Feed:        models.FeedBuyer,
		Orders:      []models.Order{{ID: 42, Status: models.StatusPending, Total: 12.5}},
		Fingerprint: "abc",
		CapturedAt:  time.Now(),
	}
	payload, err := json.Marshal(snap)
	require.NoError(t, err)

	mock.ExpectExec(regexpQuoted(upsertQuery)).
		WithArgs("campuseats:snapshot:buyer", string(payload), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.SaveSnapshot(context.Background(), snap))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadSnapshot_Expired(t *testing.T) {
	s, mock := newTestStore(t)

	stale := time.Now().Add(-2 * time.Hour)
	rows := sqlmock.NewRows([]string{"payload", "stored_at"}).
		AddRow(`{"feed":"buyer"}`, stale)

	mock.ExpectQuery(regexpQuoted(selectQuery)).
		WithArgs("campuseats:snapshot:buyer").
		WillReturnRows(rows)
	mock.ExpectExec(regexpQuoted(deleteQuery)).
		WithArgs("campuseats:snapshot:buyer").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := s.LoadSnapshot(context.Background(), models.FeedBuyer)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadSnapshot_RoundTrip(t *testing.T) {
	s, mock := newTestStore(t)

	snap := models.Snapshot{
		Feed:        models.FeedVendor,
		Orders:      []models.Order{{ID: 7, Status: models.StatusReady, Total: 3}},
		Fingerprint: "f1",
		CapturedAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(snap)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"payload", "stored_at"}).
		AddRow(string(payload), time.Now())

	mock.ExpectQuery(regexpQuoted(selectQuery)).
		WithArgs("campuseats:snapshot:vendor").
		WillReturnRows(rows)

	got, err := s.LoadSnapshot(context.Background(), models.FeedVendor)
	require.NoError(t, err)
	assert.Equal(t, snap.Fingerprint, got.Fingerprint)
	require.Len(t, got.Orders, 1)
	assert.Equal(t, models.StatusReady, got.Orders[0].Status)
}

func TestSQLiteStore_LoadQueue_MissingIsEmpty(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexpQuoted(selectQuery)).
		WithArgs("campuseats:queue").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "stored_at"}))

	items, err := s.LoadQueue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSQLiteStore_QueueDoesNotExpire(t *testing.T) {
	s, mock := newTestStore(t)

	items := []models.QueuedRequest{{ID: "q1", Method: "POST", URL: "/api/pedidos"}}
	payload, err := json.Marshal(items)
	require.NoError(t, err)

	// stored two days ago, far past the snapshot expiry; queue must survive
	rows := sqlmock.NewRows([]string{"payload", "stored_at"}).
		AddRow(string(payload), time.Now().Add(-48*time.Hour))

	mock.ExpectQuery(regexpQuoted(selectQuery)).
		WithArgs("campuseats:queue").
		WillReturnRows(rows)

	got, err := s.LoadQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "q1", got[0].ID)
}

func regexpQuoted(q string) string {
	// sqlmock matches by regexp; take the literal query
	return "^" + regexp.QuoteMeta(q) + "$"
}
