package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwarden/wkcal/internal/todo"
)

var (
	taskID  string
	taskDay string
)

var rmCmd = &cobra.Command{
	Use:   "rm [day] <text...>",
	Short: "Remove tasks from a day",
	Long: `Remove every task on the day whose text matches exactly, or the single
task named by --id.`,
	RunE: runRemove,
}

var doneCmd = &cobra.Command{
	Use:   "done [day] <text...>",
	Short: "Toggle a task's completed state",
	Long: `Toggle the first task on the day whose text matches exactly, or the
task named by --id.`,
	RunE: runDone,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove completed tasks from every day of the scope",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	for _, c := range []*cobra.Command{rmCmd, doneCmd} {
		c.Flags().StringVar(&taskID, "id", "", "Task id instead of text")
		c.Flags().StringVarP(&taskDay, "day", "d", "", "Day of the task (weekday name, date, or expression)")
	}
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(clearCmd)
}

// taskTarget resolves the day and the text or id a command operates on.
// An id without --day leaves the day empty: the task is looked up by id on
// every day of the scope.
func taskTarget(args []string) (day, text string, err error) {
	if taskID != "" && taskDay == "" {
		return "", "", nil
	}
	view, err := currentView()
	if err != nil {
		return "", "", err
	}
	day, text, err = resolveDay(strings.Join(args, " "), taskDay, view.Mode)
	if err != nil {
		return "", "", err
	}
	if taskID == "" && text == "" {
		return "", "", fmt.Errorf("task text or --id is required")
	}
	return day, text, nil
}

// dayOfTask finds the day holding the task with the given id.
func dayOfTask(ctx context.Context, store *todo.Store, scope, id string) (string, error) {
	days, err := store.Days(ctx, scope)
	if err != nil {
		return "", err
	}
	for _, key := range days.Keys() {
		for _, t := range days[key] {
			if t.ID == id {
				return key, nil
			}
		}
	}
	return "", fmt.Errorf("no task with id %s", id)
}

func runRemove(cmd *cobra.Command, args []string) error {
	day, text, err := taskTarget(args)
	if err != nil {
		return err
	}
	a, err := openApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	removed := 0
	if taskID != "" {
		if day == "" {
			if day, err = dayOfTask(ctx, a.store, cfg.DefaultScope, taskID); err != nil {
				return err
			}
		}
		ok, err := a.store.RemoveByID(ctx, cfg.DefaultScope, day, taskID)
		if err != nil {
			return err
		}
		if ok {
			removed = 1
		}
	} else {
		removed, err = a.store.RemoveTodo(ctx, cfg.DefaultScope, day, text)
		if err != nil {
			return err
		}
	}

	if removed == 0 {
		return fmt.Errorf("no matching task on %s", day)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d task(s) from %s\n", removed, day)
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	day, text, err := taskTarget(args)
	if err != nil {
		return err
	}
	a, err := openApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	var found bool
	if taskID != "" {
		if day == "" {
			if day, err = dayOfTask(ctx, a.store, cfg.DefaultScope, taskID); err != nil {
				return err
			}
		}
		found, err = a.store.ToggleByID(ctx, cfg.DefaultScope, day, taskID)
	} else {
		found, err = a.store.ToggleCompleted(ctx, cfg.DefaultScope, day, text)
	}
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no matching task on %s", day)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Toggled task on %s\n", day)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.store.ClearCompleted(context.Background(), cfg.DefaultScope)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed task(s)\n", n)
	return nil
}
