package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwarden/wkcal/internal/config"
	"github.com/cwarden/wkcal/internal/i18n"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change persisted settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsGet,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <start-of-week|language> <value>",
	Short: "Change a setting",
	Long: `Change a setting and save it. start-of-week takes Monday or Sunday;
language takes a tag such as en, de, fr or zh-TW.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.settings.Get()
	lang := s.Language
	if lang == "" {
		lang = "(system)"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:          %s\n", a.settings.Path())
	fmt.Fprintf(out, "start-of-week: %s\n", s.StartOfWeek)
	fmt.Fprintf(out, "language:      %s (%s)\n", lang, i18n.For(s.Language).Tag)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	switch strings.ToLower(args[0]) {
	case "start-of-week", "startofweek", "week-start":
		sow, err := config.ParseStartOfWeek(args[1])
		if err != nil {
			return err
		}
		if err := a.settings.SetStartOfWeek(sow); err != nil {
			return err
		}
	case "language", "lang":
		if err := a.settings.SetLanguage(args[1]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown setting %q (want start-of-week or language)", args[0])
	}
	return runSettingsGet(cmd, nil)
}
