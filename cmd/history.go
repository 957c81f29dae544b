package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cpusim/sim/store"
)

var (
	historyDBPath string // Run history database for history and show
	historyLimit  int    // Max runs listed
)

// historyCmd lists saved runs, newest first
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List runs saved with run --db",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if err := listHistory(cmd.Context(), historyDBPath, historyLimit, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// showCmd prints the full report of one saved run
var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a saved run again",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if err := showRun(cmd.Context(), historyDBPath, args[0], os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// deleteCmd removes one saved run and its events
var deleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if err := deleteRun(cmd.Context(), historyDBPath, args[0], os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func listHistory(ctx context.Context, dbPath string, limit int, w io.Writer) error {
	st, err := openStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No saved runs.")
		return nil
	}
	renderHistory(w, runs)
	return nil
}

func showRun(ctx context.Context, dbPath, id string, w io.Writer) error {
	st, err := openStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("loading run %s: %w", id, err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}
	fmt.Fprintf(w, "Run %s (%s)\n\n", run.ID, humanize.Time(run.CreatedAt))
	render(w, run.Result, columns)
	return nil
}

func deleteRun(ctx context.Context, dbPath, id string, w io.Writer) error {
	st, err := openStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("loading run %s: %w", id, err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}
	if err := st.DeleteRun(ctx, id); err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	fmt.Fprintf(w, "Deleted %s\n", id)
	return nil
}

func renderHistory(w io.Writer, runs []*store.Run) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Scenario", "Algorithm", "Quantum", "Ticks", "Makespan", "Converged", "Saved"})
	for _, r := range runs {
		q := "-"
		if r.Quantum > 0 {
			q = strconv.FormatInt(r.Quantum, 10)
		}
		table.Append([]string{
			r.ID, r.Scenario, r.Algorithm, q,
			humanize.Comma(int64(r.Ticks)), humanize.Comma(r.Makespan),
			strconv.FormatBool(r.Converged), humanize.Time(r.CreatedAt),
		})
	}
	table.Render()
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, showCmd, deleteCmd} {
		c.Flags().StringVar(&historyDBPath, "db", "cpusim.db", "SQLite database holding saved runs")
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs listed (0 = all)")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}
