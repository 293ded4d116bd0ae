package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mrodrigc/campuseats-client/migrations"
	"github.com/mrodrigc/campuseats-client/models"
)

// Open opens (or creates) the local SQLite database at path and applies the
// embedded migrations.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("ping local database: %w", err)
	}

	if err = migrations.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	return db, nil
}

type sqliteStore struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	prefix string
	expiry time.Duration
	now    func() time.Time
}

// New wraps an opened database in a [LocalStore]. prefix namespaces every key
// (the same database file may hold state for several roles); expiry bounds
// how long snapshots and the cart stay readable.
func New(db *sql.DB, prefix string, expiry time.Duration) LocalStore {
	return &sqliteStore{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
		prefix: prefix,
		expiry: expiry,
		now:    time.Now,
	}
}

func (s *sqliteStore) snapshotKey(feed models.Feed) string {
	return s.prefix + ":snapshot:" + string(feed)
}

func (s *sqliteStore) queueKey() string   { return s.prefix + ":queue" }
func (s *sqliteStore) cartKey() string    { return s.prefix + ":cart" }
func (s *sqliteStore) sessionKey() string { return s.prefix + ":session" }

func (s *sqliteStore) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	return s.put(ctx, s.snapshotKey(snap.Feed), snap)
}

func (s *sqliteStore) LoadSnapshot(ctx context.Context, feed models.Feed) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := s.get(ctx, s.snapshotKey(feed), true, &snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (s *sqliteStore) SaveQueue(ctx context.Context, items []models.QueuedRequest) error {
	if items == nil {
		items = []models.QueuedRequest{}
	}
	return s.put(ctx, s.queueKey(), items)
}

func (s *sqliteStore) LoadQueue(ctx context.Context) ([]models.QueuedRequest, error) {
	var items []models.QueuedRequest
	err := s.get(ctx, s.queueKey(), false, &items)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *sqliteStore) SaveCart(ctx context.Context, cart json.RawMessage) error {
	return s.put(ctx, s.cartKey(), cart)
}

func (s *sqliteStore) LoadCart(ctx context.Context) (json.RawMessage, error) {
	var cart json.RawMessage
	if err := s.get(ctx, s.cartKey(), true, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *sqliteStore) SaveSession(ctx context.Context, session models.Session) error {
	return s.put(ctx, s.sessionKey(), session)
}

func (s *sqliteStore) LoadSession(ctx context.Context) (models.Session, error) {
	var session models.Session
	if err := s.get(ctx, s.sessionKey(), false, &session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// put upserts a single key. The write is self-contained: it never reads or
// rewrites any other key.
func (s *sqliteStore) put(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	query, args, err := s.sb.
		Insert("client_state").
		Columns("key", "payload", "stored_at").
		Values(key, string(payload), s.now().UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert for %s: %w", key, err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	return nil
}

func (s *sqliteStore) get(ctx context.Context, key string, expires bool, dest any) error {
	query, args, err := s.sb.
		Select("payload", "stored_at").
		From("client_state").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build select for %s: %w", key, err)
	}

	var (
		payload  string
		storedAt time.Time
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}

	if expires && s.expiry > 0 && s.now().Sub(storedAt) > s.expiry {
		s.delete(ctx, key)
		return ErrNotFound
	}

	if err = json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}

	return nil
}

func (s *sqliteStore) delete(ctx context.Context, key string) {
	query, args, err := s.sb.Delete("client_state").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return
	}
	// best effort: an expired row left behind is re-expired on the next read
	_, _ = s.db.ExecContext(ctx, query, args...)
}
