package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/deepsleep/datarecording"
	"github.com/sarchlab/deepsleep/tracing"
)

var cyclesLimit int

var cyclesCmd = &cobra.Command{
	Use:   "cycles [recording.sqlite3]",
	Short: "List the wake cycles stored in a recording.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		reader.MapTable(tracing.WakeCyclesTable, tracing.WakeCycleEntry{})

		results, total, err := reader.Query(context.Background(),
			tracing.WakeCyclesTable, datarecording.QueryParams{
				OrderBy: "StartTime",
				Limit:   cyclesLimit,
			})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CYCLE\tCAUSE\tBOOT\tSTART\tEND\tBLINKS\tARMED")

		for _, r := range results {
			e := r.(*tracing.WakeCycleEntry)
			fmt.Fprintf(w, "%d\t%s\t%d\t%.3f\t%.3f\t%d\t%t\n",
				e.Cycle, e.What, e.BootCount, e.StartTime, e.EndTime,
				e.Blinks, e.WakeArmed)
		}

		err = w.Flush()
		if err != nil {
			return err
		}

		if len(results) < total {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d cycles shown\n",
				len(results), total)
		}

		return nil
	},
}

func init() {
	cyclesCmd.Flags().IntVar(&cyclesLimit, "limit", 0,
		"Show at most this many cycles, 0 for all")
	rootCmd.AddCommand(cyclesCmd)
}
