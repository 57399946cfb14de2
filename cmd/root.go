// Package cmd defines and implements the CLI commands for the menufetcher executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/menufetcher/internal/app"
	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/sodexo"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a mock app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	Concurrency() int
	Today() time.Time
	Facilities() []sodexo.Site
	Menu(ctx context.Context, id string, day time.Time) (menu.Menu, error)
}

// newApp is the application factory. It's a variable so we can
// replace it with a mock factory in our tests.
var newApp = func(configPath string) (App, error) {
	return app.NewApp(configPath)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "menufetcher",
		Short: "Fetches daily dining menus from Sodexo-hosted facilities.",
		Long: `menufetcher locates the weekly menu a Sodexo dining site publishes for a
date, extracts the requested day and prints it as a normalized menu. When no
weekly menu document can be found it falls back to the facility's menu feed.`,
		SilenceUsage: true,

		// Build the application once flags are parsed and hand it to subcommands.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./menufetcher.yaml or $HOME/.menufetcher/menufetcher.yaml)")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newFacilitiesCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute(ctx context.Context) {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
