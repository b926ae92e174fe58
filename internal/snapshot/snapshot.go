// Package snapshot keeps the last record successfully extracted for every
// cache key, so callers can fall back to stale data when the portal fails.
package snapshot

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"vtopassist-backend/internal/components/assert"
	"vtopassist-backend/internal/components/chrono"
	"vtopassist-backend/internal/components/telemetry"
	"vtopassist-backend/internal/db"
)

const (
	report_db_query = "db.query"
	report_put      = "snapshot.put"
)

type Snapshot struct {
	db     *db.Queries
	makeTx db.MakeTx
	tel    telemetry.API
	time   chrono.TimeAPI
}

func NewSnapshot(
	sqlDB *sql.DB,
	time chrono.TimeAPI,
	tel telemetry.API,
) Snapshot {
	assert.NotNil(sqlDB)
	assert.NotNil(tel)
	if time == nil {
		time = chrono.NewStandardTime()
	}

	return Snapshot{
		db:     db.New(sqlDB),
		makeTx: db.NewMakeTx(sqlDB),
		time:   time,
		tel:    telemetry.NewScopedAPI("snapshot", tel),
	}
}

// Entry describes a stored snapshot without its payload.
type Entry struct {
	Key  string
	Kind string
	// Revision counts how many times the record changed.
	Revision   int64
	ChangedAt  time.Time
	CapturedAt time.Time
}

// Put records value as the latest good copy for key. Storing the same value
// again only moves its capture time.
func (s Snapshot) Put(ctx context.Context, key, user, kind string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])
	now := s.time.Now().UnixMilli()

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	existing, err := tx.GetSnapshot(ctx, key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		param := db.InsertSnapshotParams{
			CacheKey:    key,
			UserID:      user,
			Kind:        kind,
			Payload:     payload,
			PayloadHash: hash,
			CapturedAt:  now,
		}
		if err := tx.InsertSnapshot(ctx, param); err != nil {
			s.tel.ReportBroken(report_db_query, err, "InsertSnapshot", key)
			return err
		}
	case err != nil:
		s.tel.ReportBroken(report_db_query, err, "GetSnapshot", key)
		return err
	case existing.PayloadHash == hash:
		if err := tx.TouchSnapshot(ctx, now, key); err != nil {
			s.tel.ReportBroken(report_db_query, err, "TouchSnapshot", key)
			return err
		}
	default:
		param := db.ReplaceSnapshotPayloadParams{
			Payload:     payload,
			PayloadHash: hash,
			CapturedAt:  now,
			CacheKey:    key,
		}
		if err := tx.ReplaceSnapshotPayload(ctx, param); err != nil {
			s.tel.ReportBroken(report_db_query, err, "ReplaceSnapshotPayload", key)
			return err
		}
		s.tel.ReportDebug(report_put, "record changed", key, existing.Revision+1)
	}

	if err := commit(); err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err))
		return err
	}
	return nil
}

// Get decodes the snapshot stored under key into dest. ok is false when
// there is none.
func (s Snapshot) Get(ctx context.Context, key string, dest any) (entry Entry, ok bool, err error) {
	row, err := s.db.GetSnapshot(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetSnapshot", key)
		return Entry{}, false, err
	}
	if err := json.Unmarshal(row.Payload, dest); err != nil {
		return Entry{}, false, fmt.Errorf("decode %s: %w", row.Kind, err)
	}
	return Entry{
		Key:        row.CacheKey,
		Kind:       row.Kind,
		Revision:   row.Revision,
		ChangedAt:  time.UnixMilli(row.ChangedAt),
		CapturedAt: time.UnixMilli(row.CapturedAt),
	}, true, nil
}

// List returns every snapshot held for user, ordered by key.
func (s Snapshot) List(ctx context.Context, user string) ([]Entry, error) {
	rows, err := s.db.ListUserSnapshots(ctx, user)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListUserSnapshots", user)
		return nil, err
	}
	out := make([]Entry, len(rows))
	for i, row := range rows {
		out[i] = Entry{
			Key:        row.CacheKey,
			Kind:       row.Kind,
			Revision:   row.Revision,
			ChangedAt:  time.UnixMilli(row.ChangedAt),
			CapturedAt: time.UnixMilli(row.CapturedAt),
		}
	}
	return out, nil
}

// Purge drops every snapshot held for user.
func (s Snapshot) Purge(ctx context.Context, user string) (int64, error) {
	n, err := s.db.DeleteUserSnapshots(ctx, user)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "DeleteUserSnapshots", user)
		return 0, err
	}
	return n, nil
}
