package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kochimetro/induction-engine/internal/app"
)

func main() {
	root := &cobra.Command{
		Use:   "induction-engine",
		Short: "Kochi Metro nightly fleet-induction planning engine",
	}
	root.AddCommand(serveCommand())
	root.AddCommand(migrateCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New()
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()

			a.Log.Info("serving induction planning engine", "address", a.Cfg.HTTPAddress)
			return a.Run()
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New()
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()

			a.Log.Info("migrations applied during app startup; nothing further to do")
			return nil
		},
	}
}
