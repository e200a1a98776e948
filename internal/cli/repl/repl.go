package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/sipkv/internal/cli/connection"
	"github.com/yndnr/sipkv/internal/cli/output"
	"github.com/yndnr/sipkv/internal/core/query"
	"github.com/yndnr/sipkv/internal/storage"
	"github.com/yndnr/sipkv/internal/storage/codec"
	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

// Prompts.
const (
	LocalPrompt  = "db > "
	RemotePrompt = "sipkv> "
)

// Status lines printed after each request in a local session.
const (
	StatusOK    = "Command completed successfully"
	StatusError = "Error completing command"
)

const (
	metaQuit = ".q"
	metaSave = ".save"
	metaLoad = ".load"
	metaHelp = ".help"
)

// errQuit ends the loop without an error.
var errQuit = errors.New("quit")

// Executor runs one request line and returns the reply. A non-nil error
// with an empty reply is a transport failure.
type Executor interface {
	Execute(line string) (string, error)
}

// REPL is a read-eval-print loop over an Executor.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	local     *localDB
	completer *Completer
	history   *History
	styler    *output.Styler
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams. Defaults are stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithColor forces status coloring on or off. By default it is on when
// the output is a terminal.
func WithColor(enabled bool) Option {
	return func(r *REPL) { r.styler = output.NewStyler(enabled) }
}

func newREPL(prompt string, local bool, opts []Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    prompt,
		completer: NewCompleter(local),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = NewHistory("")
	}
	if r.styler == nil {
		r.styler = output.NewStyler(output.IsTerminal(r.output))
	}
	return r
}

// NewRemote creates a REPL that forwards requests to a server.
func NewRemote(client *connection.Client, opts ...Option) *REPL {
	r := newREPL(RemotePrompt, false, opts)
	r.exec = client
	return r
}

// NewLocal creates a REPL over the in-process table t. The table is
// destroyed when the loop ends.
func NewLocal(t *hashtable.Table, log logger.Logger, opts ...Option) *REPL {
	r := newREPL(LocalPrompt, true, opts)
	r.local = &localDB{table: t, exec: query.NewExecutor(t, log, nil)}
	r.exec = r.local
	return r
}

// Run reads lines until EOF or a quit command.
func (r *REPL) Run() error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer r.history.Save()

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if err == io.EOF && line == "" {
			r.onEOF()
			return nil
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.history.Add(line)

		if strings.HasPrefix(line, ".") || (r.local == nil && (line == "exit" || line == "quit")) {
			if err := r.meta(line); err != nil {
				if err == errQuit {
					return nil
				}
				return err
			}
			continue
		}

		if err := r.request(line); err != nil {
			return err
		}
	}
}

func (r *REPL) onEOF() {
	if r.local != nil {
		fmt.Fprintln(r.output, "End of file reached, exiting...")
		r.local.table.Destroy()
		return
	}
	fmt.Fprintln(r.output)
}

func (r *REPL) request(line string) error {
	reply, err := r.exec.Execute(line)
	if r.local != nil {
		fmt.Fprintln(r.output, reply)
		if err != nil {
			fmt.Fprintln(r.output, r.styler.Fail(StatusError))
		} else {
			fmt.Fprintln(r.output, r.styler.OK(StatusOK))
		}
		return nil
	}

	if err != nil && reply == "" {
		fmt.Fprintln(r.output, r.styler.Fail("Error: "+err.Error()))
		if errors.Is(err, connection.ErrClosedByServer) {
			return err
		}
		return nil
	}
	fmt.Fprintln(r.output, reply)
	return nil
}

func (r *REPL) meta(line string) error {
	fields := strings.Fields(line)
	cmd := fields[0]

	switch {
	case cmd == metaQuit || cmd == "exit" || cmd == "quit":
		if r.local != nil {
			r.local.table.Destroy()
		}
		fmt.Fprintln(r.output, "Exiting...")
		return errQuit

	case cmd == metaHelp:
		fmt.Fprintln(r.output, r.styler.Info("requests: insert <key> <type> <value> | select <key> | delete <key> | replace <key> <type> <value>"))
		fmt.Fprintln(r.output, r.styler.Info("commands: "+strings.Join(r.completer.Complete(""), " ")))
		return nil

	case r.local != nil && (cmd == metaSave || cmd == metaLoad):
		if len(fields) != 2 {
			fmt.Fprintf(r.output, "usage: %s <file>\n", cmd)
			return nil
		}
		var (
			msg string
			err error
		)
		if cmd == metaSave {
			msg, err = r.local.save(fields[1])
		} else {
			msg, err = r.local.load(fields[1])
		}
		if err != nil {
			fmt.Fprintln(r.output, r.styler.Fail("Error: "+err.Error()))
		} else {
			fmt.Fprintln(r.output, msg)
		}
		return nil
	}

	fmt.Fprintf(r.output, "Unrecognized command '%s'\n", cmd)
	if s := r.completer.Complete(cmd); len(s) > 0 {
		fmt.Fprintf(r.output, "Did you mean: %s\n", strings.Join(s, ", "))
	}
	return nil
}

// localDB executes requests against an in-process table.
type localDB struct {
	table *hashtable.Table
	exec  *query.Executor
}

func (d *localDB) Execute(line string) (string, error) {
	return d.exec.Execute([]byte(line))
}

func (d *localDB) save(path string) (string, error) {
	fs, err := storage.NewFileStore(path, codec.FormatText)
	if err != nil {
		return "", err
	}
	if err := fs.Save(d.table); err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved %d entries to %s", d.table.Len(), path), nil
}

func (d *localDB) load(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := codec.Decode(f, d.table, codec.FormatText)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Loaded %d entries from %s (%d duplicates skipped)", st.Added, path, st.Duplicates), nil
}
