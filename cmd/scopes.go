package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var scopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "List scopes that have tasks",
	Args:  cobra.NoArgs,
	RunE:  runScopes,
}

func init() {
	rootCmd.AddCommand(scopesCmd)
}

func runScopes(cmd *cobra.Command, args []string) error {
	a, err := openApp(cliLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	m, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tDAYS\tPENDING")
	for _, scope := range m.Scopes() {
		name := scope
		if name == "" {
			name = "(global)"
		}
		pending := 0
		for _, bucket := range m[scope] {
			pending += bucket.Pending()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\n", name, len(m[scope]), pending)
	}
	return tw.Flush()
}
