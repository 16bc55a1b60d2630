package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwarden/wkcal/internal/calendar"
	"github.com/cwarden/wkcal/internal/parser"
)

var (
	showFormat   string
	showWeek     string
	showWidth    int
	exportFormat string
	exportOutput string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the week and exit",
	Long: `Print the week of the current scope as text or a markdown table. In the
dates view --week picks the week ("next week", "2024-06-14", "in 2 weeks").`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the week of the current scope",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "text", "Output format: text or markdown")
	showCmd.Flags().IntVar(&showWidth, "width", 60, "Wrap task text at this width")
	showCmd.Flags().StringVarP(&showWeek, "week", "w", "", "Any day in the week to show (dates view)")
	rootCmd.AddCommand(showCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: "+strings.Join(calendar.Formats, ", "))
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().StringVarP(&showWeek, "week", "w", "", "Any day in the week to export (dates view)")
	rootCmd.AddCommand(exportCmd)
}

// renderWeek loads the calendar for the configured view and --week.
func renderWeek() (*calendar.RenderModel, error) {
	view, err := currentView()
	if err != nil {
		return nil, err
	}
	if showWeek != "" {
		base, err := parseWeekBase(showWeek)
		if err != nil {
			return nil, err
		}
		view.Base = base
	}

	a, err := openApp(cliLogger())
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.ctrl.Render(context.Background(), view)
}

func parseWeekBase(expr string) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	switch strings.ToLower(expr) {
	case "this week":
		return time.Now(), nil
	case "next week":
		return time.Now().AddDate(0, 0, 7), nil
	case "last week":
		return time.Now().AddDate(0, 0, -7), nil
	}
	day, err := parser.NewDayParser().Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week %q: %w", expr, err)
	}
	if day.Kind == parser.KindNone {
		return time.Time{}, fmt.Errorf("invalid week %q", expr)
	}
	return day.Date, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	model, err := renderWeek()
	if err != nil {
		return err
	}
	switch strings.ToLower(showFormat) {
	case "text", "":
		return calendar.WriteText(cmd.OutOrStdout(), model, showWidth)
	case "markdown", "md":
		return calendar.WriteMarkdown(cmd.OutOrStdout(), model)
	}
	return fmt.Errorf("unknown format %q (want text or markdown)", showFormat)
}

func runExport(cmd *cobra.Command, args []string) error {
	model, err := renderWeek()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		if err := calendar.Export(f, model, exportFormat); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return calendar.Export(w, model, exportFormat)
}
