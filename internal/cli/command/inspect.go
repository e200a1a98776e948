package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sipkv/internal/cli/output"
	"github.com/yndnr/sipkv/internal/storage/codec"
)

// Record is one dump entry as printed by inspect.
type Record struct {
	Key   string `json:"key" yaml:"key"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// InspectCommand lists the records of a dump file without loading a table.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "List the records of a dump file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "dump format: text, binary",
				Value:   string(codec.FormatText),
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "stop after this many records (0 for all)",
			},
		},
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("dump file required")
	}
	format, err := codec.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	limit := c.Int("limit")
	errLimit := errors.New("limit reached")

	var records []Record
	err = codec.Scan(f, format, func(rec codec.Record) error {
		records = append(records, Record{
			Key:   string(rec.Key),
			Type:  rec.Value.Kind().String(),
			Value: rec.Value.String(),
		})
		if limit > 0 && len(records) >= limit {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	return output.NewFormatter(GetSettings(c).Output).Format(c.App.Writer, records)
}
