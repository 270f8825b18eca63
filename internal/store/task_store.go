package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRuleExists is returned when adding a rule that is already stored.
var ErrRuleExists = errors.New("forward rule already exists")

// ReasonRecipientUnreachable is recorded when a rule is dropped because its
// recipient does not accept direct messages.
const ReasonRecipientUnreachable = "recipient unreachable"

// ForwardRule relays messages posted in OriginID to Destination. Destination
// is a channel ID or "@<userID>".
type ForwardRule struct {
	ID          string    `json:"id"`
	OriginID    string    `json:"originId"`
	Destination string    `json:"destination"`
	ShowAuthor  bool      `json:"showAuthor"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Removal is an audit record of a deleted rule.
type Removal struct {
	OriginID    string    `json:"originId"`
	Destination string    `json:"destination"`
	Reason      string    `json:"reason"`
	RemovedAt   time.Time `json:"removedAt"`
}

// TaskStore manages forward rules.
type TaskStore struct {
	db *DB
}

// NewTaskStore creates a task store using the given database.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// Add stores a new rule.
func (s *TaskStore) Add(ctx context.Context, originID, destination string, showAuthor bool) (ForwardRule, error) {
	if originID == "" || destination == "" {
		return ForwardRule{}, fmt.Errorf("forward rule needs an origin and a destination")
	}
	if originID == destination {
		return ForwardRule{}, fmt.Errorf("forward rule %s loops onto itself", originID)
	}

	rule := ForwardRule{
		ID:          uuid.NewString(),
		OriginID:    originID,
		Destination: destination,
		ShowAuthor:  showAuthor,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return ForwardRule{}, fmt.Errorf("begin add rule: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM forward_rules WHERE origin_id = ? AND destination = ?`,
		originID, destination,
	).Scan(&count); err != nil {
		return ForwardRule{}, fmt.Errorf("checking rule: %w", err)
	}
	if count > 0 {
		return ForwardRule{}, fmt.Errorf("%s -> %s: %w", originID, destination, ErrRuleExists)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO forward_rules (id, origin_id, destination, show_author, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rule.ID, rule.OriginID, rule.Destination, rule.ShowAuthor, rule.CreatedAt.Format(time.DateTime),
	); err != nil {
		return ForwardRule{}, fmt.Errorf("inserting rule: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ForwardRule{}, fmt.Errorf("commit add rule: %w", err)
	}

	s.db.log.Info().Str("origin", originID).Str("destination", destination).Msg("forward rule added")
	return rule, nil
}

// ListByOrigin returns the rules for one origin channel, oldest first.
func (s *TaskStore) ListByOrigin(ctx context.Context, originID string) ([]ForwardRule, error) {
	return s.query(ctx,
		`SELECT id, origin_id, destination, show_author, created_at
		 FROM forward_rules WHERE origin_id = ? ORDER BY created_at, rowid`, originID)
}

// List returns every rule.
func (s *TaskStore) List(ctx context.Context) ([]ForwardRule, error) {
	return s.query(ctx,
		`SELECT id, origin_id, destination, show_author, created_at
		 FROM forward_rules ORDER BY origin_id, created_at, rowid`)
}

// Count returns the number of stored rules.
func (s *TaskStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM forward_rules`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rules: %w", err)
	}
	return n, nil
}

// Remove deletes a rule and records why. It reports whether a rule existed.
func (s *TaskStore) Remove(ctx context.Context, originID, destination, reason string) (bool, error) {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin remove rule: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM forward_rules WHERE origin_id = ? AND destination = ?`, originID, destination)
	if err != nil {
		return false, fmt.Errorf("deleting rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting rule: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rule_removals (origin_id, destination, reason) VALUES (?, ?, ?)`,
		originID, destination, reason,
	); err != nil {
		return false, fmt.Errorf("recording removal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit remove rule: %w", err)
	}

	s.db.log.Info().
		Str("origin", originID).
		Str("destination", destination).
		Str("reason", reason).
		Msg("forward rule removed")
	return true, nil
}

// RemoveTask drops the rule relaying originID to recipientKey after the
// recipient turned out to be unreachable. A rule that is already gone is
// not an error.
func (s *TaskStore) RemoveTask(ctx context.Context, originID, recipientKey string) error {
	_, err := s.Remove(ctx, originID, recipientKey, ReasonRecipientUnreachable)
	return err
}

// Removals returns the removal history of an origin, newest first.
func (s *TaskStore) Removals(ctx context.Context, originID string) ([]Removal, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT origin_id, destination, reason, removed_at
		 FROM rule_removals WHERE origin_id = ? ORDER BY id DESC`, originID)
	if err != nil {
		return nil, fmt.Errorf("querying removals: %w", err)
	}
	defer rows.Close()

	var out []Removal
	for rows.Next() {
		var r Removal
		var ts string
		if err := rows.Scan(&r.OriginID, &r.Destination, &r.Reason, &ts); err != nil {
			return nil, fmt.Errorf("scanning removal: %w", err)
		}
		r.RemovedAt, _ = time.Parse(time.DateTime, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *TaskStore) query(ctx context.Context, q string, args ...any) ([]ForwardRule, error) {
	rows, err := s.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var out []ForwardRule
	for rows.Next() {
		var r ForwardRule
		var ts string
		var showAuthor sql.NullBool
		if err := rows.Scan(&r.ID, &r.OriginID, &r.Destination, &showAuthor, &ts); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		r.ShowAuthor = showAuthor.Bool
		r.CreatedAt, _ = time.Parse(time.DateTime, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}
