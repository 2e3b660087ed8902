package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shhac/interfere/internal/app"
	"github.com/shhac/interfere/internal/storage"
	"github.com/shhac/interfere/internal/ui"
)

var (
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "interfere",
	Short: "A desktop HTTP client that remembers every response",
	Long: `Interfere sends GET and POST requests and keeps each endpoint's
responses in a local history you can browse, replay and edit.`,
	SilenceUsage: true,
	RunE:         runApp,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   showVersion,
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the whole request history to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("storage", "", "Directory holding the history database")
	rootCmd.PersistentFlags().String("db", "", "History database file")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Request timeout")
	rootCmd.PersistentFlags().String("theme", "", "Theme (system, light, dark)")

	bindFlags(rootCmd)

	rootCmd.AddCommand(versionCmd, exportCmd)
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	for key, name := range map[string]string{
		"debug":        "debug",
		"storage_path": "storage",
		"db_file":      "db",
		"timeout":      "timeout",
		"theme":        "theme",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := app.LoadConfig(configPath, viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// runApp is the GUI entry point with panic recovery.
func runApp(cmd *cobra.Command, _ []string) (err error) {
	// Create a temporary stdout logger for bootstrap errors
	tempLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	defer func() {
		if r := recover(); r != nil {
			tempLogger.Error("panic recovered",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	tempLogger.Info("starting Interfere", slog.String("version", app.Version))

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fyneApp := fyneapp.NewWithID("com.interfere.client")

	interfere, err := app.New(fyneApp, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if cerr := interfere.Close(); cerr != nil {
			tempLogger.Warn("shutdown", slog.Any("error", cerr))
		}
	}()

	ui.ApplyTheme(fyneApp, cfg.Theme)
	mainWindow := ui.NewMainWindow(interfere)

	// Blocks until the window closes
	interfere.Run(mainWindow.Window())

	interfere.Logger().Info("application shutdown complete")
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	repo, err := app.OpenRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	n, err := storage.ExportJSON(context.Background(), repo, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d endpoints to %s\n",
		color.New(color.FgGreen, color.Bold).Sprint("Exported"), n, args[0])
	return nil
}

func showVersion(cmd *cobra.Command, _ []string) {
	label := color.New(color.FgHiBlack)
	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("Interfere"), app.Version)
	fmt.Printf("%s %s\n", label.Sprint("Commit:"), commit)
	fmt.Printf("%s  %s\n", label.Sprint("Built:"), buildDate)
}
