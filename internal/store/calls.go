package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Call is one journaled handle operation.
type Call struct {
	ID          string        `json:"id"`
	HandleID    string        `json:"handle_id"`
	Destination string        `json:"destination"`
	Path        string        `json:"path"`
	Interface   string        `json:"interface"`
	Op          string        `json:"op"`
	Member      string        `json:"member,omitempty"`
	Signature   string        `json:"signature,omitempty"`
	Args        []any         `json:"args"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	Seq         int64         `json:"seq"`
}

// Filter narrows ReadCalls. Zero fields match everything.
type Filter struct {
	Interface string
	Member    string
	HandleID  string
	AfterSeq  int64
	Limit     int
}

// MemberSummary aggregates journal entries for one member.
type MemberSummary struct {
	Interface string `json:"interface"`
	Op        string `json:"op"`
	Member    string `json:"member"`
	Calls     int    `json:"calls"`
	Errors    int    `json:"errors"`
}

// WriteCall appends an entry and returns the seq it was stamped with.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: rewriting an existing ID
// is silently ignored and returns seq 0.
func (s *Store) WriteCall(ctx context.Context, c Call) (int64, error) {
	argsJSON, err := marshalArgs(c.Args)
	if err != nil {
		return 0, fmt.Errorf("write call: %w", err)
	}

	seq := s.nextSeq()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO calls
		(id, handle_id, destination, path, interface, op, member, signature, args, error, duration_us, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		c.ID,
		c.HandleID,
		c.Destination,
		c.Path,
		c.Interface,
		c.Op,
		c.Member,
		c.Signature,
		argsJSON,
		c.Error,
		c.Duration.Microseconds(),
		seq,
	)
	if err != nil {
		return 0, fmt.Errorf("write call: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("write call: rows affected: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	return seq, nil
}

// ReadCalls returns journal entries matching f.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadCalls(ctx context.Context, f Filter) ([]Call, error) {
	var where []string
	var args []any
	if f.Interface != "" {
		where = append(where, "interface = ?")
		args = append(args, f.Interface)
	}
	if f.Member != "" {
		where = append(where, "member = ?")
		args = append(args, f.Member)
	}
	if f.HandleID != "" {
		where = append(where, "handle_id = ?")
		args = append(args, f.HandleID)
	}
	if f.AfterSeq > 0 {
		where = append(where, "seq > ?")
		args = append(args, f.AfterSeq)
	}

	query := `
		SELECT id, handle_id, destination, path, interface, op, member, signature, args, error, duration_us, seq
		FROM calls`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY seq ASC, id COLLATE BINARY ASC"
	if f.Limit > 0 {
		query += "\n\t\tLIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []Call{}
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}

	return calls, nil
}

// Summarize counts entries and failures per interface, operation and member.
// Ordered by interface, op, member.
func (s *Store) Summarize(ctx context.Context) ([]MemberSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT interface, op, member, COUNT(*), SUM(CASE WHEN error != '' THEN 1 ELSE 0 END)
		FROM calls
		GROUP BY interface, op, member
		ORDER BY interface COLLATE BINARY ASC, op COLLATE BINARY ASC, member COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("summarize calls: %w", err)
	}
	defer rows.Close()

	summaries := []MemberSummary{}
	for rows.Next() {
		var m MemberSummary
		if err := rows.Scan(&m.Interface, &m.Op, &m.Member, &m.Calls, &m.Errors); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}

	return summaries, nil
}

// scanCall scans a row into a Call.
func scanCall(rows *sql.Rows) (Call, error) {
	var c Call
	var argsJSON string
	var durationUS int64

	err := rows.Scan(
		&c.ID,
		&c.HandleID,
		&c.Destination,
		&c.Path,
		&c.Interface,
		&c.Op,
		&c.Member,
		&c.Signature,
		&argsJSON,
		&c.Error,
		&durationUS,
		&c.Seq,
	)
	if err != nil {
		return Call{}, fmt.Errorf("scan call: %w", err)
	}

	c.Args, err = unmarshalArgs(argsJSON)
	if err != nil {
		return Call{}, fmt.Errorf("scan call %s: %w", c.ID, err)
	}
	c.Duration = time.Duration(durationUS) * time.Microsecond

	return c, nil
}
