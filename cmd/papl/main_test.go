package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSearchCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "papl",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pricing", Required: true},
					&cli.StringFlag{Name: "rules", Required: true},
					&cli.StringFlag{Name: "guidance", Required: true},
					&cli.IntFlag{Name: "max-results", Value: 10},
				},
			},
		},
	}

	t.Run("missing pricing flag fails", func(t *testing.T) {
		args := []string{"papl", "search", "--rules", "/tmp/rules.yaml", "--guidance", "/tmp/guide.md", "therapy"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pricing")
	})

	t.Run("missing data files fail", func(t *testing.T) {
		args := []string{
			"papl", "search",
			"--pricing", "/nonexistent/pricing.json",
			"--rules", "/nonexistent/rules.yaml",
			"--guidance", "/nonexistent/guide.md",
			"therapy",
		}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pricing data")
	})

	t.Run("empty query fails", func(t *testing.T) {
		args := []string{
			"papl", "search",
			"--pricing", "/nonexistent/pricing.json",
			"--rules", "/nonexistent/rules.yaml",
			"--guidance", "/nonexistent/guide.md",
		}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "   a\n   b", indent("a\nb\n", "   "))
	assert.Equal(t, "  single", indent("single", "  "))
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("default log level is info", func(t *testing.T) {
		err := newApp().Run([]string{"test"})
		require.NoError(t, err)
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newApp().Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}
