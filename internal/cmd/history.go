package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent locate runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historyLimit int
	historyJSON  bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.history == nil {
		return errors.New("history is not enabled")
	}
	runs, err := a.history.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		return writeJSON(cmd.OutOrStdout(), runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLABEL\tFOUND\tX\tY\tMETHOD\tCONF\tATTEMPTS\tMS")
	for _, e := range runs {
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\t%s\t%.2f\t%d\t%d\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Label, e.Found,
			e.X, e.Y, e.Method, e.Confidence, e.Attempts, e.DurationMs)
	}
	return w.Flush()
}
