package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwarden/wkcal/internal/calendar"
	"github.com/cwarden/wkcal/internal/parser"
)

var addDay string

var addCmd = &cobra.Command{
	Use:   "add [day] <text...>",
	Short: "Add a task to a day",
	Long: `Add a task to a day of the current scope. The day may lead the text
("fri call mom", "tomorrow buy milk", "2024-06-14 dentist") or be given
with --day. Without either the task goes to today.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addDay, "day", "d", "", "Day to add to (weekday name, date, or expression like 'next fri')")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	view, err := currentView()
	if err != nil {
		return err
	}

	key, text, err := resolveDay(strings.Join(args, " "), addDay, view.Mode)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to add")
	}

	a, err := openApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.store.AddTodo(context.Background(), view.Scope, key, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added to %s: %s (%s)\n", key, task.Text, task.ID)
	return nil
}

// resolveDay splits input into the day key it names and the remaining
// text. An explicit day expression takes precedence over the input.
func resolveDay(input, explicit string, mode calendar.Mode) (key, text string, err error) {
	p := parser.NewDayParser()
	dates := mode == calendar.ModeDates

	if explicit != "" {
		day, err := p.Parse(explicit)
		if err != nil {
			return "", "", fmt.Errorf("invalid day %q: %w", explicit, err)
		}
		if day.Kind == parser.KindNone {
			return "", "", fmt.Errorf("invalid day %q", explicit)
		}
		return day.Key(dates), strings.TrimSpace(input), nil
	}

	if strings.TrimSpace(input) == "" {
		input = "today"
	}
	day, err := p.Parse(input)
	if err != nil {
		return "", "", err
	}
	return day.Key(dates), day.Text, nil
}
