package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/GoArmGo/RecipeApp/internal/di"
	"github.com/spf13/cobra"
)

// bootstrap-логгер (используется только на этапе инициализации т.к еще не создан основной)
var bootstrapLogger = slog.New(
	slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
)

var rootCmd = &cobra.Command{
	Use:   "recipeapp",
	Short: "Recipe API server",
	Long: `RecipeApp serves a REST API for user recipes, tags and ingredients
together with an administrative interface.

Without a subcommand the HTTP server is started.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply migrations and start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return di.Migrate()
	},
}

var createSuperuserCmd = &cobra.Command{
	Use:     "createsuperuser",
	Short:   "Create a user with staff and superuser rights",
	Example: `  recipeapp createsuperuser --email admin@example.com --password secret`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("RECIPEAPP_SUPERUSER_PASSWORD")
		}
		if password == "" {
			return errors.New("password is required: pass --password or set RECIPEAPP_SUPERUSER_PASSWORD")
		}

		user, err := di.CreateSuperuser(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		bootstrapLogger.Info("superuser created", "user_id", user.ID, "email", user.Email)
		return nil
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	bootstrapLogger.Info("starting application")

	app, err := di.BuildApp(cmd.Context())
	if err != nil {
		return err
	}
	bootstrapLogger.Info("application initialized successfully")

	slog := app.LoggerIns()
	slog.Info("application using main logger")

	if err := app.Run(cmd.Context()); err != nil {
		slog.Error("application run failed", "error", err)
		return err
	}

	slog.Info("application stopped gracefully")
	return nil
}

func init() {
	createSuperuserCmd.Flags().String("email", "", "superuser email")
	createSuperuserCmd.Flags().String("password", "", "superuser password (or RECIPEAPP_SUPERUSER_PASSWORD)")
	_ = createSuperuserCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, createSuperuserCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		bootstrapLogger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
