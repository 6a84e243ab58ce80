// Package querytest provides an in-memory query executor for tests.
package querytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Handler produces the rows for one request.
type Handler func(args []any) ([]*query.MapRow, error)

// Stub is a call-counting executor serving canned rows per request text.
type Stub struct {
	mu       sync.Mutex
	handlers map[string]Handler
	execErrs map[string]error
	calls    map[string]int
	execs    []query.Request
	holds    map[string]chan struct{}
	entered  map[string]chan struct{}
}

// New creates an empty stub. Requests without a handler fail.
func New() *Stub {
	return &Stub{
		handlers: make(map[string]Handler),
		execErrs: make(map[string]error),
		calls:    make(map[string]int),
		holds:    make(map[string]chan struct{}),
		entered:  make(map[string]chan struct{}),
	}
}

// On registers a handler for the request text.
func (s *Stub) On(sql string, h Handler) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[sql] = h
	return s
}

// OnRows registers static rows for the request text, regardless of arguments.
func (s *Stub) OnRows(sql string, cols []string, rows ...[]any) *Stub {
	built := Rows(cols, rows...)
	return s.On(sql, func([]any) ([]*query.MapRow, error) { return built, nil })
}

// OnError makes the request fail with err.
func (s *Stub) OnError(sql string, err error) *Stub {
	return s.On(sql, func([]any) ([]*query.MapRow, error) { return nil, err })
}

// OnExecError makes Exec of the request fail with err.
func (s *Stub) OnExecError(sql string, err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execErrs[sql] = err
	return s
}

// Hold blocks queries for sql until the returned release func is called.
// The entered channel is closed when the first such query starts waiting.
func (s *Stub) Hold(sql string) (entered <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	in := make(chan struct{})
	s.holds[sql] = gate
	s.entered[sql] = in
	var once sync.Once
	return in, func() { once.Do(func() { close(gate) }) }
}

// Calls returns how many times the request text was queried.
func (s *Stub) Calls(sql string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[sql]
}

// TotalCalls returns the number of queries executed.
func (s *Stub) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Execs returns the requests passed to Exec, in order.
func (s *Stub) Execs() []query.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]query.Request, len(s.execs))
	copy(out, s.execs)
	return out
}

// Query serves the registered rows.
func (s *Stub) Query(ctx context.Context, req query.Request) (query.Cursor, error) {
	if req.Unsupported() {
		return query.NewSliceCursor(nil), nil
	}

	s.mu.Lock()
	s.calls[req.SQL]++
	h, ok := s.handlers[req.SQL]
	gate := s.holds[req.SQL]
	in := s.entered[req.SQL]
	if in != nil {
		delete(s.entered, req.SQL)
	}
	s.mu.Unlock()

	if gate != nil {
		if in != nil {
			close(in)
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !ok {
		return nil, fmt.Errorf("querytest: unexpected request %q", req.SQL)
	}
	rows, err := h(req.Args)
	if err != nil {
		return nil, err
	}
	return query.NewSliceCursor(rows), nil
}

// Exec records the request.
func (s *Stub) Exec(_ context.Context, req query.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execs = append(s.execs, req)
	return s.execErrs[req.SQL]
}

// Rows builds materialized rows from column names and value tuples.
func Rows(cols []string, rows ...[]any) []*query.MapRow {
	out := make([]*query.MapRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, query.NewMapRow(cols, r))
	}
	return out
}

// FilterBy returns a handler serving only rows whose column equals args[argIdx].
// When the request has fewer args, every row is served.
func FilterBy(col string, argIdx int, rows []*query.MapRow) Handler {
	return func(args []any) ([]*query.MapRow, error) {
		if argIdx >= len(args) {
			return rows, nil
		}
		want := fmt.Sprint(args[argIdx])
		var out []*query.MapRow
		for _, r := range rows {
			if r.SafeString(col) == want {
				out = append(out, r)
			}
		}
		return out, nil
	}
}

var _ query.Executor = (*Stub)(nil)
