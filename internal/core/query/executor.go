package query

import (
	"errors"
	"net"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/yndnr/sipkv/internal/core/domain"
	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/internal/telemetry/metric"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

// Reply texts.
const (
	ReplyInserted     = "Value inserted successfully"
	ReplyNotFound     = "Key not found"
	ReplyRemoved      = "Key removed successfully"
	ReplyReplaced     = "Key replaced successfully"
	ReplyMalformed    = "Malformed query"
	ReplyNotSupported = "Query not supported"
	ReplyInsertError  = "Error inserting key"
	ReplyReplaceError = "Error replacing key"
)

// Conn is the reply side of a client connection.
type Conn interface {
	ID() string
	Write(p []byte) (int, error)
}

// Executor applies requests to one table.
type Executor struct {
	table   *hashtable.Table
	logger  logger.Logger
	metrics *metric.Registry
}

// NewExecutor creates an executor over t. metrics may be nil.
func NewExecutor(t *hashtable.Table, log logger.Logger, metrics *metric.Registry) *Executor {
	return &Executor{
		table:   t,
		logger:  logger.OrDefault(log),
		metrics: metrics,
	}
}

// Table returns the table the executor mutates.
func (e *Executor) Table() *hashtable.Table {
	return e.table
}

// Handle executes one request read from c and writes the reply back with a
// single write.
func (e *Executor) Handle(c Conn, data []byte, addr net.Addr) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	e.run(buf, data, "conn_id", c.ID(), "remote", addrString(addr))

	n, err := c.Write(buf.B)
	switch {
	case err != nil:
		e.logger.Warn("reply write failed", "conn_id", c.ID(), "error", err)
	case n < len(buf.B):
		e.logger.Warn("reply truncated", "conn_id", c.ID(), "written", n, "size", len(buf.B))
	}
}

// Execute runs one request and returns the reply text. The error is the
// request's domain outcome, nil on success.
func (e *Executor) Execute(data []byte) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	err := e.run(buf, data)
	return buf.String(), err
}

func (e *Executor) run(buf *bytebufferpool.ByteBuffer, data []byte, fields ...any) error {
	start := time.Now()

	req, err := Parse(data)
	if err == nil {
		err = e.apply(buf, req)
	} else {
		writeParseError(buf, err)
	}

	verb := string(req.Verb)
	if verb == "" {
		verb = "unknown"
	}
	outcome := metric.OutcomeOK
	if err != nil {
		outcome = metric.OutcomeError
		kv := append(fields, "verb", verb, "key", req.Key, "code", domain.Code(err), "error", err)
		// Table refusals are routine; unparseable requests are worth seeing.
		if domain.ClassOf(err) == domain.ClassKey {
			e.logger.Debug("command failed", kv...)
		} else {
			e.logger.Info("command failed", kv...)
		}
	} else {
		e.logger.Debug("command completed", append(fields, "verb", verb, "key", req.Key)...)
	}

	if e.metrics != nil {
		e.metrics.ObserveCommand(verb, outcome, time.Since(start).Seconds())
		e.metrics.PublishTable(metric.TableStats{
			Entries:  e.table.Len(),
			Buckets:  e.table.Capacity(),
			Exponent: e.table.Exponent(),
			Grows:    e.table.Grows(),
		})
	}
	return err
}

func writeParseError(buf *bytebufferpool.ByteBuffer, err error) {
	if errors.Is(err, domain.ErrQueryNotSupported) {
		buf.WriteString(ReplyNotSupported)
		return
	}
	buf.WriteString(ReplyMalformed)
}

func (e *Executor) apply(buf *bytebufferpool.ByteBuffer, req domain.Request) error {
	key := []byte(req.Key)

	switch req.Verb {
	case domain.VerbInsert:
		v, err := parseTyped(req)
		if err != nil {
			buf.WriteString(ReplyInsertError)
			return err
		}
		if e.table.Add(key, v) == hashtable.AlreadyExists {
			buf.WriteString("Key ")
			buf.WriteString(req.Key)
			buf.WriteString(" already exists")
			return domain.ErrKeyExists
		}
		buf.WriteString(ReplyInserted)

	case domain.VerbSelect:
		v := e.table.Find(key)
		if v.IsNone() {
			buf.WriteString(ReplyNotFound)
			return domain.ErrKeyNotFound
		}
		buf.WriteString("{")
		buf.WriteString(req.Key)
		buf.WriteString(": ")
		buf.WriteString(v.String())
		buf.WriteString("}")

	case domain.VerbDelete:
		if e.table.Remove(key) == hashtable.NotFound {
			buf.WriteString(ReplyNotFound)
			return domain.ErrKeyNotFound
		}
		buf.WriteString(ReplyRemoved)

	case domain.VerbReplace:
		v, err := parseTyped(req)
		if err != nil {
			buf.WriteString(ReplyReplaceError)
			return err
		}
		e.table.Replace(key, v)
		buf.WriteString(ReplyReplaced)
	}
	return nil
}

func parseTyped(req domain.Request) (hashtable.Value, error) {
	kind, ok := hashtable.ParseKind(req.Type)
	if !ok {
		return hashtable.None, domain.ErrInvalidValue.With("unknown type " + req.Type)
	}
	text := req.Value
	if kind != hashtable.KindText {
		text = strings.TrimLeft(text, " ")
	}
	v, err := hashtable.ParseValue(kind, text)
	if err != nil {
		return hashtable.None, domain.ErrInvalidValue.With("type " + req.Type).Because(err)
	}
	return v, nil
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
