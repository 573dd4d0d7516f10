// Command chatd runs the direct-messaging service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KOMKZ/go-yogan-chat/application"
	"github.com/KOMKZ/go-yogan-chat/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

type rootFlags struct {
	configPath string
	env        string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "chatd",
		Short:        "Direct-messaging service with a cache-consistent read path",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "./configs", "directory holding config.yaml and {env}.yaml")
	root.PersistentFlags().StringVarP(&flags.env, "env", "e", "", "environment name (default: APP_ENV, ENV, then dev)")

	root.AddCommand(newServeCmd(flags), newMigrateCmd(flags), newVersionCmd())
	return root
}

func (f *rootFlags) options(cmd *cobra.Command) di.ConfigOptions {
	return di.ConfigOptions{
		ConfigPath: f.configPath,
		Env:        f.env,
		Defaults:   map[string]any{"app": map[string]any{"version": version}},
		Flags:      cmd.Flags(),
		FlagMapping: map[string]string{
			"addr": "http.addr",
			"mode": "http.mode",
		},
	}
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := application.New(flags.options(cmd))
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides http.addr")
	cmd.Flags().String("mode", "", "gin mode (debug, release, test), overrides http.mode")
	return cmd
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and direct_messages tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := application.NewBase(flags.options(cmd))
			if err != nil {
				return err
			}
			defer base.Shutdown(timeout)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
			defer cancelTimeout()

			if err := di.Migrate(ctx, base.Injector()); err != nil {
				base.Logger().ErrorCtx(ctx, "migration failed", zap.Error(err))
				return err
			}
			base.Logger().InfoCtx(ctx, "migration finished", zap.Int("models", len(di.Models())))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "migration deadline")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
