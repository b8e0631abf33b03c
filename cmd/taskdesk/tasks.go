package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskdesk/pkg/manager"
	"taskdesk/pkg/task"
)

var (
	addDescription string
	addCategory    string
	addPriority    string
	addDue         string
	addParent      int64

	listRoots bool
	listState string

	updateTitle       string
	updateDescription string
	updateCategory    string
	updatePriority    string
	updateState       string
	updateDue         string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			var parent *int64
			if addParent != 0 {
				parent = &addParent
			}
			id, err := m.Create(ctx, args[0], addDescription,
				task.Category(addCategory), task.Priority(addPriority), addDue, parent)
			if err != nil {
				return err
			}
			fmt.Printf("Created task %d\n", id)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			var tasks []task.Task
			var err error
			if listState != "" {
				tasks, err = m.Filter(ctx, map[string]any{"estado": listState})
			} else {
				tasks, err = m.ListAll(ctx, !listRoots)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRIORITY\tSTATE\tDUE\tPARENT")
			for _, t := range tasks {
				parent := ""
				if t.ParentID != nil {
					parent = strconv.FormatInt(*t.ParentID, 10)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Title, t.Category, t.Priority, t.State, t.DueAt, parent)
			}
			w.Flush()

			total, err := m.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d shown, %d total\n", len(tasks), total)
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad id %q", args[0])
		}
		updates := map[string]any{}
		if cmd.Flags().Changed("title") {
			updates["titulo"] = updateTitle
		}
		if cmd.Flags().Changed("description") {
			updates["descricao"] = updateDescription
		}
		if cmd.Flags().Changed("category") {
			updates["categoria"] = updateCategory
		}
		if cmd.Flags().Changed("priority") {
			updates["prioridade"] = updatePriority
		}
		if cmd.Flags().Changed("state") {
			updates["estado"] = updateState
		}
		if cmd.Flags().Changed("due") {
			updates["data_vencimento"] = updateDue
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			ok, err := m.Update(ctx, id, updates)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("nothing to update")
			}
			fmt.Printf("Updated task %d\n", id)
			return nil
		})
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad id %q", args[0])
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			ok, err := m.Update(ctx, id, map[string]any{"estado": task.StateDone})
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("nothing to update")
			}
			fmt.Printf("Task %d done\n", id)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task and its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad id %q", args[0])
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			removed, err := m.Delete(ctx, id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("task %d not found", id)
			}
			fmt.Printf("Deleted task %d\n", id)
			return nil
		})
	},
}

var childrenCmd = &cobra.Command{
	Use:   "children <id>",
	Short: "List the direct subtasks of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad id %q", args[0])
		}
		return withManager(func(ctx context.Context, m *manager.Manager) error {
			children, err := m.Children(ctx, id)
			if err != nil {
				return err
			}
			for _, t := range children {
				fmt.Printf("%d\t%s\t[%s]\n", t.ID, t.Title, t.State)
			}
			fmt.Printf("%d subtasks\n", len(children))
			return nil
		})
	},
}

func init() {
	addCmd.Flags().StringVar(&addDescription, "description", "", "Task description")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category: Work|Studies|Personal")
	addCmd.Flags().StringVar(&addPriority, "priority", "", "Priority: High|Medium|Low")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().Int64Var(&addParent, "parent", 0, "Parent task id (creates a subtask)")

	listCmd.Flags().BoolVar(&listRoots, "roots", false, "Only top-level tasks")
	listCmd.Flags().StringVar(&listState, "state", "", "Filter by state")

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "New description")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "New category")
	updateCmd.Flags().StringVar(&updatePriority, "priority", "", "New priority")
	updateCmd.Flags().StringVar(&updateState, "state", "", "New state: pending|in-progress|done")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "New due date (YYYY-MM-DD)")

	rootCmd.AddCommand(addCmd, listCmd, updateCmd, doneCmd, deleteCmd, childrenCmd)
}
