package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sipkv/internal/cli/config"
	"github.com/yndnr/sipkv/internal/cli/output"
	"github.com/yndnr/sipkv/internal/infra/buildinfo"
)

const settingsKey = "settings"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "sipkv-cli",
		Usage:   "sipkv command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ExecCommand(),
			ReplCommand(),
			LocalCommand(),
			InspectCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			s, err := loadSettings(c)
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[settingsKey] = s
			return nil
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI configuration file",
			EnvVars: []string{"SIPKV_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address (host:port)",
			EnvVars: []string{"SIPKV_CLI_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
		},
		&cli.StringFlag{
			Name:  "color",
			Usage: "color REPL status lines: auto, always, never",
		},
	}
}

// Settings are the effective CLI options: flags over the config file over
// defaults.
type Settings struct {
	Server      string
	Output      output.Format
	Timeout     time.Duration
	Color       bool
	HistoryFile string
}

func loadSettings(c *cli.Context) (*Settings, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load cli config: %w", err)
	}
	if c.IsSet("server") {
		cfg.Server = c.String("server")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("color") {
		cfg.Color = c.String("color")
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	timeout := c.Duration("timeout")
	if !c.IsSet("timeout") {
		if timeout, err = time.ParseDuration(cfg.Timeout); err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
		}
	}

	var color bool
	switch cfg.Color {
	case "always":
		color = true
	case "never":
	case "auto", "":
		color = output.IsTerminal(c.App.Writer)
	default:
		return nil, fmt.Errorf("invalid color mode %q", cfg.Color)
	}

	return &Settings{
		Server:      cfg.Server,
		Output:      format,
		Timeout:     timeout,
		Color:       color,
		HistoryFile: cfg.HistoryFile,
	}, nil
}

// GetSettings returns the settings resolved by App's Before hook.
func GetSettings(c *cli.Context) *Settings {
	if s, ok := c.App.Metadata[settingsKey].(*Settings); ok {
		return s
	}
	return &Settings{Server: config.Default().Server, Output: output.FormatTable, Timeout: 5 * time.Second}
}

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			return output.NewFormatter(GetSettings(c).Output).Format(c.App.Writer, buildinfo.Get())
		},
	}
}
