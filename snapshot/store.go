// Package snapshot keeps a history of generated registries in sqlite so a
// codegen run can report how the type registry drifted since the last run.
package snapshot

import (
	"bytes"
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
	"github.com/teranos/cruxgen/registry"
)

// Snapshot is one stored codegen run.
type Snapshot struct {
	ID            string
	Crate         string
	CrateVersion  string
	FormatVersion uint32
	// SHA256 of the rustdoc JSON the registry was generated from
	SourceDigest string
	Containers   int
	// Registry in YAML form
	Registry  []byte
	CreatedAt time.Time
}

// New builds a snapshot of reg. ID and CreatedAt are assigned by Save.
func New(crate, crateVersion string, formatVersion uint32, digest string, reg *registry.Registry) (Snapshot, error) {
	data, err := registry.Marshal(reg, registry.YAML)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "failed to encode registry")
	}
	return Snapshot{
		Crate:         crate,
		CrateVersion:  crateVersion,
		FormatVersion: formatVersion,
		SourceDigest:  digest,
		Containers:    reg.Len(),
		Registry:      data,
	}, nil
}

// Decode parses the stored registry.
func (s Snapshot) Decode() (*registry.Registry, error) {
	return registry.DecodeYAML(bytes.NewReader(s.Registry))
}

// Store persists snapshots.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// NewStore wraps a migrated database. log may be nil.
func NewStore(db *sql.DB, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{db: db, log: log, now: time.Now}
}

// Save inserts s and returns its new id.
func (s *Store) Save(ctx context.Context, snap Snapshot) (string, error) {
	snap.ID = uuid.New().String()
	snap.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, crate, crate_version, format_version, source_digest, containers, registry, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Crate, snap.CrateVersion, snap.FormatVersion, snap.SourceDigest, snap.Containers, string(snap.Registry), snap.CreatedAt,
	)
	if err != nil {
		return "", errors.Wrapf(err, "failed to save snapshot of %s", snap.Crate)
	}

	s.log.Debugw("Saved snapshot",
		"id", snap.ID,
		logger.FieldCrate, snap.Crate,
		logger.FieldCount, snap.Containers,
	)
	return snap.ID, nil
}

const selectColumns = `SELECT id, crate, crate_version, format_version, source_digest, containers, registry, created_at FROM snapshots`

// Latest returns the most recent snapshot of crate.
// It returns a not-found error when the crate has no history yet.
func (s *Store) Latest(ctx context.Context, crate string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE crate = ? ORDER BY created_at DESC LIMIT 1`, crate)
	snap, err := scan(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("snapshot of %s", crate)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load latest snapshot of %s", crate)
	}
	return snap, nil
}

// List returns up to limit snapshots, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	query := selectColumns + ` ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan snapshot")
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*Snapshot, error) {
	var (
		snap Snapshot
		reg  string
	)
	if err := row.Scan(&snap.ID, &snap.Crate, &snap.CrateVersion, &snap.FormatVersion,
		&snap.SourceDigest, &snap.Containers, &reg, &snap.CreatedAt); err != nil {
		return nil, err
	}
	snap.Registry = []byte(reg)
	return &snap, nil
}

// Drift compares reg against the latest snapshot of crate. ok is false when
// there is no earlier snapshot to compare with.
func (s *Store) Drift(ctx context.Context, crate string, reg *registry.Registry) (changes registry.Changes, ok bool, err error) {
	prev, err := s.Latest(ctx, crate)
	if errors.IsNotFoundError(err) {
		return registry.Changes{}, false, nil
	}
	if err != nil {
		return registry.Changes{}, false, err
	}
	old, err := prev.Decode()
	if err != nil {
		return registry.Changes{}, false, errors.Wrapf(err, "snapshot %s", prev.ID)
	}
	return registry.Diff(old, reg), true, nil
}
