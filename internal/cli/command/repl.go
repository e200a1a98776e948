package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sipkv/internal/cli/connection"
	"github.com/yndnr/sipkv/internal/cli/repl"
	"github.com/yndnr/sipkv/internal/storage/codec"
	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

// ReplCommand starts an interactive session against a server.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Interactive session against a server",
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	s := GetSettings(c)

	client := connection.NewClient(s.Server, connection.WithTimeout(s.Timeout))
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	fmt.Fprintf(c.App.Writer, "Connected to %s. Type .help for help, .q to quit.\n", s.Server)
	return repl.NewRemote(client, replOptions(c, s)...).Run()
}

// LocalCommand starts an interactive session against an in-process table.
func LocalCommand() *cli.Command {
	return &cli.Command{
		Name:  "local",
		Usage: "Interactive session against an in-process table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "load",
				Usage: "text dump to load before the first prompt",
			},
		},
		Action: localAction,
	}
}

func localAction(c *cli.Context) error {
	s := GetSettings(c)
	t := hashtable.New()

	if path := c.String("load"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		st, err := codec.Decode(f, t, codec.FormatText)
		f.Close()
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		fmt.Fprintf(c.App.Writer, "Loaded %d entries from %s\n", st.Added, path)
	}

	return repl.NewLocal(t, logger.NewNop(), replOptions(c, s)...).Run()
}

func replOptions(c *cli.Context, s *Settings) []repl.Option {
	return []repl.Option{
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithColor(s.Color),
		repl.WithHistory(repl.NewHistory(s.HistoryFile)),
	}
}
