package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/franckalain/fittrack/internal/app"
	"github.com/franckalain/fittrack/internal/config"
	"github.com/franckalain/fittrack/internal/logging"
	"github.com/spf13/cobra"
)

type cli struct {
	configPath string
	app        *app.App
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{}
	err := newRootCmd(c).ExecuteContext(ctx)
	c.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "fittrack",
		Short:         "Track meals, macros and water from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			logger := logging.Configure(cfg.Log.Level, cfg.Log.Pretty)
			c.app, err = app.New(cmd.Context(), cfg, logger)
			return err
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.GetConfigPath(), "path to configuration file")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.todayCmd(),
		c.addCmd(),
		c.searchCmd(),
		c.analyzeCmd(),
		c.waterCmd(),
		c.analyticsCmd(),
		c.healthCmd(),
	)
	return root
}
