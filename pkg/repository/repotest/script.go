package repotest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

// Transaction markers recorded alongside statements.
const (
	Begin    = "BEGIN"
	Commit   = "COMMIT"
	Rollback = "ROLLBACK"
)

var errUnscripted = errors.New("repotest: unscripted statement")

// Step answers one statement. The statement text must contain Match.
// Query statements return Rows; exec statements report RowsAffected.
// A non-nil Err is returned instead of either.
type Step struct {
	Match        string
	Rows         [][]driver.Value
	RowsAffected int64
	Err          error
}

// Statement is a statement or transaction marker received by a Script.
type Statement struct {
	Query string
	Args  []driver.Value
}

// Script is a database that answers statements from a fixed list of steps,
// in order. Statements that do not match the next step fail the test.
type Script struct {
	DB *sql.DB

	t     testing.TB
	mu    sync.Mutex
	steps []Step
	next  int
	log   []Statement
}

// NewScript opens a scripted database. The test fails at cleanup if any
// step was never reached.
func NewScript(t testing.TB, steps ...Step) *Script {
	t.Helper()

	s := &Script{t: t, steps: steps}
	s.DB = sql.OpenDB(connector{s})
	s.DB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		s.DB.Close()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.next < len(s.steps) {
			t.Errorf("repotest: %d scripted steps never ran, next matches %q", len(s.steps)-s.next, s.steps[s.next].Match)
		}
	})
	return s
}

// Statements returns everything received so far, including transaction markers.
func (s *Script) Statements() []Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Statement(nil), s.log...)
}

// Queries returns the text of everything received so far.
func (s *Script) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	queries := make([]string, len(s.log))
	for i, st := range s.log {
		queries[i] = st.Query
	}
	return queries
}

func (s *Script) mark(marker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, Statement{Query: marker})
}

func (s *Script) take(query string, named []driver.NamedValue) (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := make([]driver.Value, len(named))
	for i, nv := range named {
		args[i] = nv.Value
	}
	s.log = append(s.log, Statement{Query: query, Args: args})

	if s.next >= len(s.steps) {
		s.t.Errorf("repotest: unexpected statement %q", query)
		return Step{}, errUnscripted
	}

	step := s.steps[s.next]
	s.next++

	if !strings.Contains(query, step.Match) {
		s.t.Errorf("repotest: statement %q does not match %q", query, step.Match)
		return Step{}, errUnscripted
	}
	return step, step.Err
}

type connector struct {
	s *Script
}

func (c connector) Connect(context.Context) (driver.Conn, error) {
	return &conn{s: c.s}, nil
}

func (connector) Driver() driver.Driver {
	return scriptDriver{}
}

type scriptDriver struct{}

func (scriptDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("repotest: scripted databases are opened with NewScript")
}

type conn struct {
	s *Script
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("repotest: prepare not supported: %q", query)
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *conn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	c.s.mark(Begin)
	return tx{s: c.s}, nil
}

func (c *conn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	step, err := c.s.take(query, args)
	if err != nil {
		return nil, err
	}
	return driver.RowsAffected(step.RowsAffected), nil
}

func (c *conn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	step, err := c.s.take(query, args)
	if err != nil {
		return nil, err
	}
	return &rows{values: step.Rows}, nil
}

type tx struct {
	s *Script
}

func (t tx) Commit() error {
	t.s.mark(Commit)
	return nil
}

func (t tx) Rollback() error {
	t.s.mark(Rollback)
	return nil
}

// rows names its columns positionally; scanners only rely on the count.
type rows struct {
	values [][]driver.Value
	pos    int
}

func (r *rows) Columns() []string {
	if len(r.values) == 0 {
		return nil
	}
	cols := make([]string, len(r.values[0]))
	for i := range cols {
		cols[i] = fmt.Sprintf("col%d", i)
	}
	return cols
}

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}
