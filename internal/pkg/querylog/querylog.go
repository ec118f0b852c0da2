// Package querylog records every SQL statement executed while serving one
// request.
//
// A Session is created per inbound request and handed explicitly to every call
// that touches the store. It acquires a connection from the pool on first use,
// appends one Entry per statement and releases the connection on Close.
// Sessions are not shared between requests and are not safe for concurrent use.
package querylog

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"
)

// Entry is one traced statement execution.
type Entry struct {
	SQL      string  `json:"sql"`
	Params   []any   `json:"params"`
	Duration float64 `json:"duration"`
}

// Observer is notified after every statement, successful or not.
type Observer func(ctx context.Context, entry Entry, elapsed time.Duration, err error)

// Tracer opens sessions against a connection pool.
type Tracer struct {
	db        *sql.DB
	observers []Observer
}

// NewTracer creates a Tracer over db. Observers are called in order for every
// statement of every session.
func NewTracer(db *sql.DB, observers ...Observer) *Tracer {
	return &Tracer{db: db, observers: observers}
}

// Session starts an empty trace. No connection is acquired until the first
// statement runs.
func (t *Tracer) Session() *Session {
	return &Session{
		db:        t.db,
		observers: t.observers,
		entries:   make([]Entry, 0, 4),
	}
}

// Session is the per-request statement trace and connection scope.
type Session struct {
	db        *sql.DB
	conn      *sql.Conn
	observers []Observer
	entries   []Entry
	closed    bool
}

func (s *Session) acquire(ctx context.Context) (*sql.Conn, error) {
	if s.closed {
		return nil, fmt.Errorf("querylog: session closed")
	}
	if s.conn != nil {
		return s.conn, nil
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	s.conn = conn
	return conn, nil
}

// QueryContext runs a statement that returns rows. The caller must close the
// rows before issuing the next statement on the session. The entry is traced
// immediately; observers are notified when the rows are closed so they see
// errors raised while iterating.
func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	entry := s.append(query, args, time.Since(start))
	if err != nil {
		s.notify(ctx, entry, time.Since(start), err)
		return nil, err
	}
	return &Rows{Rows: rows, ctx: ctx, session: s, entry: entry, start: start}, nil
}

// ExecContext runs a statement that returns no rows.
func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := conn.ExecContext(ctx, query, args...)
	s.record(ctx, query, args, time.Since(start), err)
	return result, err
}

func (s *Session) record(ctx context.Context, query string, args []any, elapsed time.Duration, err error) {
	s.notify(ctx, s.append(query, args, elapsed), elapsed, err)
}

func (s *Session) append(query string, args []any, elapsed time.Duration) Entry {
	params := make([]any, len(args))
	copy(params, args)

	entry := Entry{
		SQL:      query,
		Params:   params,
		Duration: Milliseconds(elapsed),
	}
	s.entries = append(s.entries, entry)
	return entry
}

func (s *Session) notify(ctx context.Context, entry Entry, elapsed time.Duration, err error) {
	for _, observe := range s.observers {
		observe(ctx, entry, elapsed, err)
	}
}

// Rows is the result set of a traced query.
type Rows struct {
	*sql.Rows

	ctx      context.Context
	session  *Session
	entry    Entry
	start    time.Time
	notified bool
}

// Close closes the result set and reports the statement's outcome to the
// session observers. The outcome is the first error met while iterating,
// or the close error.
func (r *Rows) Close() error {
	outcome := r.Rows.Err()
	err := r.Rows.Close()
	if outcome == nil {
		outcome = err
	}
	if !r.notified {
		r.notified = true
		r.session.notify(r.ctx, r.entry, time.Since(r.start), outcome)
	}
	return err
}

// Entries returns a copy of the trace in execution order. The result is never
// nil.
func (s *Session) Entries() []Entry {
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Len returns the number of statements traced so far.
func (s *Session) Len() int {
	return len(s.entries)
}

// Close releases the connection if one was acquired. It is safe to call more
// than once.
func (s *Session) Close() error {
	s.closed = true
	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	return conn.Close()
}

// Milliseconds converts d to milliseconds rounded to two decimal places.
func Milliseconds(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Millisecond)*100) / 100
}

// Operation classifies a statement by its leading keyword: SELECT, INSERT,
// UPDATE, DELETE or OTHER.
func Operation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "OTHER"
	}
	switch keyword := strings.ToUpper(fields[0]); keyword {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return keyword
	default:
		return "OTHER"
	}
}
