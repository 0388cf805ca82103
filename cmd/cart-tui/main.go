package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jcmexdev/gift-cart/internal/cart/app"
	"github.com/jcmexdev/gift-cart/internal/cart/journal"
	"github.com/jcmexdev/gift-cart/internal/cart/journal/sqlite"
	"github.com/jcmexdev/gift-cart/internal/pkg/telemetry"
	"github.com/jcmexdev/gift-cart/internal/tui"
)

var (
	logFile     string
	logLevel    string
	journalPath string
)

// rootCmd runs the storefront in the terminal. stdout belongs to the UI, so
// logs go to a file.
var rootCmd = &cobra.Command{
	Use:   "cart-tui",
	Short: "Shop the catalog and unlock the free gift from the terminal",
	Long: `cart-tui opens a single cart session in the terminal.

Spend ₹1000 or more and a Wireless Mouse is added to the cart for free.
It is taken back as soon as the subtotal drops below the threshold.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&logFile, "log-file", "cart-tui.log", "File to write logs to")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&journalPath, "journal", "", "SQLite file for the cart journal (disabled when empty)")
}

func run(cmd *cobra.Command, _ []string) error {
	log, closeLog, err := telemetry.NewFileLogger(logFile, logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	var repo journal.Repository
	if journalPath != "" {
		db, err := sqlite.Open(journalPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		repo = db
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	model := tui.New(ctx, app.NewService(repo, log))
	log.InfoContext(ctx, "tui started", "session_id", model.SessionID())

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
