package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Snapshot struct {
	CacheKey    string
	UserID      string
	Kind        string
	Payload     []byte
	PayloadHash string
	Revision    int64
	ChangedAt   int64
	CapturedAt  int64
}

const getSnapshot = `select cache_key, user_id, kind, payload, payload_hash, revision, changed_at, captured_at
from snapshot where cache_key = ?`

func (q *Queries) GetSnapshot(ctx context.Context, cacheKey string) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, getSnapshot, cacheKey)
	var s Snapshot
	err := row.Scan(
		&s.CacheKey,
		&s.UserID,
		&s.Kind,
		&s.Payload,
		&s.PayloadHash,
		&s.Revision,
		&s.ChangedAt,
		&s.CapturedAt,
	)
	return s, err
}

const insertSnapshot = `insert into snapshot(cache_key, user_id, kind, payload, payload_hash, revision, changed_at, captured_at)
values (?, ?, ?, ?, ?, 1, ?, ?)`

type InsertSnapshotParams struct {
	CacheKey    string
	UserID      string
	Kind        string
	Payload     []byte
	PayloadHash string
	CapturedAt  int64
}

func (q *Queries) InsertSnapshot(ctx context.Context, arg InsertSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, insertSnapshot,
		arg.CacheKey,
		arg.UserID,
		arg.Kind,
		arg.Payload,
		arg.PayloadHash,
		arg.CapturedAt,
		arg.CapturedAt,
	)
	return err
}

const replaceSnapshotPayload = `update snapshot
set payload = ?, payload_hash = ?, revision = revision + 1, changed_at = ?, captured_at = ?
where cache_key = ?`

type ReplaceSnapshotPayloadParams struct {
	Payload     []byte
	PayloadHash string
	CapturedAt  int64
	CacheKey    string
}

func (q *Queries) ReplaceSnapshotPayload(ctx context.Context, arg ReplaceSnapshotPayloadParams) error {
	_, err := q.db.ExecContext(ctx, replaceSnapshotPayload,
		arg.Payload,
		arg.PayloadHash,
		arg.CapturedAt,
		arg.CapturedAt,
		arg.CacheKey,
	)
	return err
}

const touchSnapshot = `update snapshot set captured_at = ? where cache_key = ?`

func (q *Queries) TouchSnapshot(ctx context.Context, capturedAt int64, cacheKey string) error {
	_, err := q.db.ExecContext(ctx, touchSnapshot, capturedAt, cacheKey)
	return err
}

const listUserSnapshots = `select cache_key, kind, revision, changed_at, captured_at
from snapshot where user_id = ? order by cache_key`

type ListUserSnapshotsRow struct {
	CacheKey   string
	Kind       string
	Revision   int64
	ChangedAt  int64
	CapturedAt int64
}

func (q *Queries) ListUserSnapshots(ctx context.Context, userID string) ([]ListUserSnapshotsRow, error) {
	rows, err := q.db.QueryContext(ctx, listUserSnapshots, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListUserSnapshotsRow
	for rows.Next() {
		var i ListUserSnapshotsRow
		if err := rows.Scan(
			&i.CacheKey,
			&i.Kind,
			&i.Revision,
			&i.ChangedAt,
			&i.CapturedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteUserSnapshots = `delete from snapshot where user_id = ?`

func (q *Queries) DeleteUserSnapshots(ctx context.Context, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteUserSnapshots, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
