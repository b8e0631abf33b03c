package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"taskdesk/internal/config"
	"taskdesk/internal/db"
	"taskdesk/pkg/assist"
	"taskdesk/pkg/manager"
)

var rootCmd = &cobra.Command{
	Use:   "taskdesk",
	Short: "taskdesk - local task manager with AI suggestions",
	Long: `taskdesk keeps tasks and subtasks in a local SQLite file and can ask a
hosted model for priority/category/due-date suggestions, improvement advice,
and chat-style help.

Examples:
  taskdesk add "Buy milk" --category Personal --priority Low --due 2025-01-10
  taskdesk list --roots
  taskdesk done 3
  taskdesk export tasks.csv --format csv
  taskdesk analyze "Prepare exam" --description "Algebra revision"`,
}

var (
	configPath string
	dbPath     string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (overrides config)")
}

// withManager opens the store for one command invocation and guarantees it
// is released before the process exits.
func withManager(fn func(ctx context.Context, m *manager.Manager) error) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
		cfg.PostgresDSN = ""
	}

	handle, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := handle.Close(); err != nil {
			log.Printf("taskdesk: close store: %v", err)
		}
	}()

	return fn(ctx, manager.New(handle.Store))
}

// newAssistClient builds the AI client from config. The API key comes from
// GROQ_API_KEY; a missing key simply means every call falls back.
func newAssistClient() (*assist.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return assist.New(assist.NewGroqCompleter(cfg.Model)), nil
}

func parseFormat(s string) (manager.Format, error) {
	switch manager.Format(s) {
	case manager.FormatCSV:
		return manager.FormatCSV, nil
	case manager.FormatJSON:
		return manager.FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want csv or json)", s)
	}
}
