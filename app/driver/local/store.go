package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"member-portal/app/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS member (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'member',
	verified      INTEGER NOT NULL DEFAULT 0,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS local_session (
	id         TEXT PRIMARY KEY,
	member_id  TEXT NOT NULL REFERENCES member(id),
	expires_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
`

// MemberRecord is a member row including the password hash. The hash never
// leaves this package's callers; the domain identity is derived from it.
type MemberRecord struct {
	Identity     domain.Identity
	PasswordHash string
}

// Store is the locally persisted record set backing the local adapter.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if necessary bootstraps) the local database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap local store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateMember inserts a member record.
func (s *Store) CreateMember(ctx context.Context, rec MemberRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (id, email, name, role, verified, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Identity.ID.String(),
		rec.Identity.Email,
		rec.Identity.Name,
		string(rec.Identity.Role),
		boolToInt(rec.Identity.Verified),
		rec.PasswordHash,
		rec.Identity.CreatedAt.Unix(),
		rec.Identity.UpdatedAt.Unix(),
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrMemberAlreadyExists
	}
	return err
}

// GetMemberByEmail retrieves a member record by email.
func (s *Store) GetMemberByEmail(ctx context.Context, email string) (*MemberRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, verified, password_hash, created_at, updated_at
		 FROM member WHERE email = ?`, email)
	return scanMember(row)
}

// GetMemberByID retrieves a member record by ID.
func (s *Store) GetMemberByID(ctx context.Context, id uuid.UUID) (*MemberRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, verified, password_hash, created_at, updated_at
		 FROM member WHERE id = ?`, id.String())
	return scanMember(row)
}

// CreateSession records an issued local session.
func (s *Store) CreateSession(ctx context.Context, sessionID string, memberID uuid.UUID, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_session (id, member_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, memberID.String(), expiresAt.Unix(), time.Now().Unix())
	return err
}

// SessionActive reports whether a session exists and has not expired.
func (s *Store) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM local_session WHERE id = ?`, sessionID).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return time.Now().Unix() < expiresAt, nil
}

// DeleteSession removes a session marker. Deleting a missing session is a
// no-op, matching best-effort logout semantics.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_session WHERE id = ?`, sessionID)
	return err
}

// DeleteExpiredSessions removes session markers past their expiry and
// returns the number deleted.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM local_session WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMember(row *sql.Row) (*MemberRecord, error) {
	var (
		rec       MemberRecord
		id        string
		role      string
		verified  int
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&id, &rec.Identity.Email, &rec.Identity.Name, &role, &verified,
		&rec.PasswordHash, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.Identity.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt member ID %q: %w", id, err)
	}
	rec.Identity.Role = domain.MemberRole(role)
	rec.Identity.Verified = verified != 0
	rec.Identity.CreatedAt = time.Unix(createdAt, 0)
	rec.Identity.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
