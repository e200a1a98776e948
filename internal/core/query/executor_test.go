package query

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/sipkv/internal/core/domain"
	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/internal/telemetry/metric"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

type fakeConn struct {
	out    bytes.Buffer
	writes int
}

func (c *fakeConn) ID() string { return "test-conn" }

func (c *fakeConn) Write(p []byte) (int, error) {
	c.writes++
	return c.out.Write(p)
}

func newExecutor() *Executor {
	return NewExecutor(hashtable.New(), logger.NewNop(), nil)
}

func run(t *testing.T, e *Executor, req string) string {
	t.Helper()
	reply, _ := e.Execute([]byte(req))
	return reply
}

func TestExecutor_Session(t *testing.T) {
	e := newExecutor()

	steps := []struct {
		req  string
		want string
	}{
		{"insert aKey string hello\n", "Value inserted successfully"},
		{"insert aKey string world\n", "Key aKey already exists"},
		{"select aKey\n", "{aKey: hello}"},
		{"replace missingKey int -5\n", "Key replaced successfully"},
		{"select missingKey\n", "{missingKey: -5}"},
		{"delete nothing\n", "Key not found"},
		{"select\n", "Malformed query"},
		{"frobnicate x\n", "Query not supported"},
		{"insert u uint 18446744073709551615", "Value inserted successfully"},
		{"select u", "{u: 18446744073709551615}"},
		{"insert d double 2.5", "Value inserted successfully"},
		{"select d", "{d: 2.500000}"},
		{"insert msg string hello big world", "Value inserted successfully"},
		{"select msg", "{msg: hello big world}"},
		{"delete msg", "Key removed successfully"},
		{"select msg", "Key not found"},
		{"replace aKey string bye", "Key replaced successfully"},
		{"select aKey", "{aKey: bye}"},
		{"insert spaced int  5", "Value inserted successfully"},
		{"select spaced", "{spaced: 5}"},
		{"replace spaced double   0.5", "Key replaced successfully"},
		{"select spaced", "{spaced: 0.500000}"},
		{"insert padded string  two spaces", "Value inserted successfully"},
		{"select padded", "{padded:  two spaces}"},
	}

	for _, s := range steps {
		if got := run(t, e, s.req); got != s.want {
			t.Errorf("%q -> %q, want %q", s.req, got, s.want)
		}
	}
}

func TestExecutor_TypeErrors(t *testing.T) {
	e := newExecutor()

	tests := []struct {
		req  string
		want string
	}{
		{"insert k int abc", ReplyInsertError},
		{"insert k uint -1", ReplyInsertError},
		{"insert k double 1.5x", ReplyInsertError},
		{"insert k blob xyz", ReplyInsertError},
		{"replace k int 12z", ReplyReplaceError},
		{"replace k none 1", ReplyReplaceError},
	}
	for _, tt := range tests {
		reply, err := e.Execute([]byte(tt.req))
		if reply != tt.want {
			t.Errorf("%q -> %q, want %q", tt.req, reply, tt.want)
		}
		if !errors.Is(err, domain.ErrInvalidValue) {
			t.Errorf("%q err = %v, want ErrInvalidValue", tt.req, err)
		}
	}
	if e.Table().Len() != 0 {
		t.Errorf("table mutated by failed requests: Len = %d", e.Table().Len())
	}
}

func TestExecutor_DomainErrors(t *testing.T) {
	e := newExecutor()
	run(t, e, "insert k int 1")

	tests := []struct {
		req  string
		want error
	}{
		{"insert k int 2", domain.ErrKeyExists},
		{"select nope", domain.ErrKeyNotFound},
		{"delete nope", domain.ErrKeyNotFound},
		{"select", domain.ErrMalformedQuery},
		{"nope", domain.ErrQueryNotSupported},
	}
	for _, tt := range tests {
		if _, err := e.Execute([]byte(tt.req)); !errors.Is(err, tt.want) {
			t.Errorf("%q err = %v, want %v", tt.req, err, tt.want)
		}
	}
	if _, err := e.Execute([]byte("select k")); err != nil {
		t.Errorf("select k err = %v, want nil", err)
	}
}

func TestExecutor_DuplicateKeepsValue(t *testing.T) {
	e := newExecutor()
	run(t, e, "insert n int 1")
	run(t, e, "insert n int 2")
	if got := e.Table().Find([]byte("n")); got.Int() != 1 {
		t.Errorf("n = %d, want 1", got.Int())
	}
}

func TestExecutor_HandleSingleWrite(t *testing.T) {
	e := newExecutor()
	c := &fakeConn{}
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}

	e.Handle(c, []byte("insert k string v\n"), addr)
	if c.writes != 1 {
		t.Fatalf("writes = %d, want 1", c.writes)
	}
	if c.out.String() != ReplyInserted {
		t.Fatalf("reply = %q", c.out.String())
	}

	c.out.Reset()
	e.Handle(c, []byte("select k\n"), nil)
	if c.out.String() != "{k: v}" {
		t.Fatalf("reply = %q", c.out.String())
	}
}

type shortConn struct{ fakeConn }

func (c *shortConn) Write(p []byte) (int, error) {
	c.writes++
	return c.out.Write(p[:len(p)/2])
}

func TestExecutor_HandleShortWrite(t *testing.T) {
	var logs bytes.Buffer
	log, err := logger.New(logger.Config{Level: "info", Format: "json", Output: &logs})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	e := NewExecutor(hashtable.New(), log, nil)
	c := &shortConn{}

	e.Handle(c, []byte("insert k string v\n"), nil)
	if c.writes != 1 {
		t.Fatalf("writes = %d, want 1", c.writes)
	}
	if !strings.Contains(logs.String(), "reply truncated") {
		t.Errorf("log output %q does not report the short write", logs.String())
	}
}

func TestExecutor_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	e := NewExecutor(hashtable.New(), logger.NewNop(), reg)

	for i := 0; i < 33; i++ {
		run(t, e, "insert k"+string(rune('A'+i))+" int 1")
	}
	run(t, e, "select missing")
	run(t, e, "bogus")

	if got := testutil.ToFloat64(reg.CommandsTotal.WithLabelValues("insert", metric.OutcomeOK)); got != 33 {
		t.Errorf("insert ok = %v, want 33", got)
	}
	if got := testutil.ToFloat64(reg.CommandsTotal.WithLabelValues("select", metric.OutcomeError)); got != 1 {
		t.Errorf("select error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.CommandsTotal.WithLabelValues("unknown", metric.OutcomeError)); got != 1 {
		t.Errorf("unknown error = %v, want 1", got)
	}

	stats := reg.Table.Latest()
	if stats.Entries != 33 || stats.Exponent != 6 || stats.Grows != 1 {
		t.Errorf("table stats = %+v, want 33 entries at exponent 6 after one grow", stats)
	}
}
