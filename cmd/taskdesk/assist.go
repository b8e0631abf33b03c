package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"taskdesk/pkg/manager"
)

var analyzeDescription string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <title>",
	Short: "Ask the model to suggest priority, category and due date for a new task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAssistClient()
		if err != nil {
			return err
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			existing, err := m.ListAll(ctx, true)
			if err != nil {
				return err
			}
			a := client.AnalyzeNewTask(ctx, args[0], analyzeDescription, existing)
			fmt.Printf("Priority: %s (%s)\n", a.Priority, a.Justifications.Priority)
			fmt.Printf("Category: %s (%s)\n", a.Category, a.Justifications.Category)
			fmt.Printf("Due:      %s (%s)\n", a.DueDate, a.Justifications.DueDate)
			if len(a.SimilarTasks) > 0 {
				fmt.Println("Similar tasks:")
				for _, s := range a.SimilarTasks {
					fmt.Printf("  - %s\n", s)
				}
			}
			return nil
		})
	},
}

var improveCmd = &cobra.Command{
	Use:   "improve <id>",
	Short: "Ask the model for improvement suggestions on an existing task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad id %q", args[0])
		}
		client, err := newAssistClient()
		if err != nil {
			return err
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			t, err := m.Get(ctx, id)
			if err != nil {
				return err
			}
			imp := client.SuggestImprovements(ctx, *t)
			fmt.Printf("Title:       %s\n", imp.TitleSuggestion)
			fmt.Printf("Description: %s\n", imp.DescriptionSuggestion)
			fmt.Printf("Adjustments: priority %s, category %s\n", imp.Adjustments.Priority, imp.Adjustments.Category)
			fmt.Println("Subtasks:")
			for _, s := range imp.SuggestedSubtasks {
				fmt.Printf("  - %s\n", s)
			}
			fmt.Println("Recommendations:")
			for _, r := range imp.Recommendations {
				fmt.Printf("  - %s\n", r)
			}
			return nil
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Chat with the assistant about your tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAssistClient()
		if err != nil {
			return err
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			current, err := m.ListAll(ctx, true)
			if err != nil {
				return err
			}
			reply := client.Chat(ctx, args[0], current)
			fmt.Println(reply.Text)
			if len(reply.SuggestedActions) > 0 {
				fmt.Println("\nSuggested actions:")
				for _, a := range reply.SuggestedActions {
					fmt.Printf("  - %s\n", a)
				}
			}
			return nil
		})
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDescription, "description", "", "Task description for the analysis")
	rootCmd.AddCommand(analyzeCmd, improveCmd, chatCmd)
}
