package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taskdesk/pkg/manager"
)

var (
	exportFormat string
	importFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export all tasks to a CSV or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := parseFormat(exportFormat)
		if err != nil {
			return err
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			if err := m.Export(ctx, args[0], f); err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", args[0])
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import tasks from a CSV or JSON file (additive, never updates)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := parseFormat(importFormat)
		if err != nil {
			return err
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			if err := m.Import(ctx, args[0], f); err != nil {
				return err
			}
			fmt.Printf("Imported from %s\n", args[0])
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Encoding: csv|json")
	importCmd.Flags().StringVar(&importFormat, "format", "csv", "Encoding: csv|json")
	rootCmd.AddCommand(exportCmd, importCmd)
}
