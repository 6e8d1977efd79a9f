package main

import (
	"context"
	"os"

	"pulsebridge-consult/cmd/bootstrap"
	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "pulsebridge",
		Short:        "Consultation booking and escrow payment API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(expireHoldsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Initialize application with all dependencies
			app, err := bootstrap.New()
			if err != nil {
				logrus.Errorf("Failed to initialize application: %v", err)
				return err
			}

			// Run the application
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			return database.Migrate(cfg.DB, "up", 0)
		},
	})

	// migrate down
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			return database.Migrate(cfg.DB, "down", steps)
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back (0 rolls back all)")
	cmd.AddCommand(downCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with development data",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, _ := cmd.Flags().GetInt("doctors")
			patients, _ := cmd.Flags().GetInt("patients")
			days, _ := cmd.Flags().GetInt("days")

			app, err := bootstrap.Open()
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Seed(context.Background(), bootstrap.SeedOptions{
				Doctors:  doctors,
				Patients: patients,
				Days:     days,
			})
		},
	}
	cmd.Flags().Int("doctors", 20, "Approved doctors to create")
	cmd.Flags().Int("patients", 200, "Patients to create")
	cmd.Flags().Int("days", 7, "Days of availability per doctor")
	return cmd
}

func expireHoldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expire-holds",
		Short: "Expire abandoned booking attempts and release their slot holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			once, _ := cmd.Flags().GetBool("once")

			app, err := bootstrap.Open()
			if err != nil {
				return err
			}
			defer app.Close()

			return app.RunExpiryWorker(once)
		},
	}
	cmd.Flags().Bool("once", false, "Run a single pass and exit")
	return cmd
}
