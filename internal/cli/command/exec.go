package command

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sipkv/internal/cli/connection"
	"github.com/yndnr/sipkv/internal/cli/output"
)

// Result is one request and its reply.
type Result struct {
	Request string `json:"request" yaml:"request"`
	Reply   string `json:"reply" yaml:"reply"`
}

// ExecCommand sends requests to a server.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send one request, or one request per stdin line when no arguments are given",
		ArgsUsage: "[REQUEST...]",
		Action:    execAction,
	}
}

func execAction(c *cli.Context) error {
	s := GetSettings(c)

	var requests []string
	if c.Args().Present() {
		requests = []string{strings.Join(c.Args().Slice(), " ")}
	} else {
		scanner := bufio.NewScanner(c.App.Reader)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				requests = append(requests, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read requests: %w", err)
		}
	}
	if len(requests) == 0 {
		return fmt.Errorf("no request given")
	}

	client := connection.NewClient(s.Server, connection.WithTimeout(s.Timeout))
	defer client.Close()

	results := make([]Result, 0, len(requests))
	for _, req := range requests {
		reply, err := client.Execute(req)
		if err != nil {
			return fmt.Errorf("%q: %w", req, err)
		}
		results = append(results, Result{Request: req, Reply: reply})
	}

	if s.Output == output.FormatTable {
		for _, r := range results {
			fmt.Fprintln(c.App.Writer, r.Reply)
		}
		return nil
	}
	return output.NewFormatter(s.Output).Format(c.App.Writer, results)
}
