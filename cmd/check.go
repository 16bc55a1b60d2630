package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwarden/wkcal/internal/storage"
	"github.com/cwarden/wkcal/internal/todo"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a todo data file",
	Long: `Validate a JSON todo data file against the data schema and report every
violation. Without an argument the configured data file is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := cfg.DataFile
	if len(args) == 1 {
		path = args[0]
	}

	data, err := storage.OSStorage{}.Read(path)
	if storage.IsNotExist(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: no data yet\n", path)
		return nil
	}
	if err != nil {
		return &todo.IOError{Op: "read", Path: path, Err: err}
	}

	errs := todo.Validate(data)
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %d problem(s) found", path, len(errs))
	}

	m, err := todo.Decode(data)
	if err != nil {
		return err
	}
	tasks := 0
	for _, days := range m {
		for _, bucket := range days {
			tasks += len(bucket)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d scopes, %d tasks)\n", path, len(m), tasks)
	return nil
}
