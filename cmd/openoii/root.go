package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/alexjunanjing-2/openOii-doubao/internal/api"
	"github.com/alexjunanjing-2/openOii-doubao/internal/config"
	"github.com/alexjunanjing-2/openOii-doubao/internal/session"
	"github.com/alexjunanjing-2/openOii-doubao/internal/version"
)

// commandContext carries lazily loaded configuration into subcommands.
type commandContext struct {
	configFlag string
	serverFlag string

	cfg *config.ClientConfig
}

func (c *commandContext) ensureConfig() (*config.ClientConfig, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if c.serverFlag != "" {
		os.Setenv("OPENOII_SERVER_URL", c.serverFlag)
	}
	if c.configFlag != "" {
		cfg, err := config.Load(c.configFlag)
		if err != nil {
			return nil, err
		}
		c.cfg = cfg
		return cfg, nil
	}
	if _, err := os.Stat("client.yaml"); err == nil {
		cfg, err := config.Load("client.yaml")
		if err != nil {
			return nil, err
		}
		c.cfg = cfg
		return cfg, nil
	}
	c.cfg = config.Default()
	return c.cfg, nil
}

func (c *commandContext) apiClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.Server.BaseURL), nil
}

func (c *commandContext) sessionStore() (*session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.Open(cfg.Session.Path)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "openoii",
		Short:         "Client for the openOii story-to-video pipeline",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.serverFlag, "server", "", "Backend base URL (overrides config)")

	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newConfirmCommand(ctx))
	rootCmd.AddCommand(newFeedbackCommand(ctx))
	rootCmd.AddCommand(newCancelCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newSceneCommand(ctx))

	return rootCmd
}
