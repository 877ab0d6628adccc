package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/stateneuron/datarecording"
)

var reportCmd = &cobra.Command{
	Use:   "report <database>",
	Short: "Summarize a database written by run --record.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}

		reader := datarecording.NewReader(args[0])
		defer reader.Close()

		return report(cmd.Context(), reader, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

// report prints the spike count of every node and the last recorded value
// of every recordable.
func report(ctx context.Context, reader datarecording.DataReader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reader.MapTable(datarecording.SpikeTable, datarecording.SpikeRow{})
	reader.MapTable(datarecording.RecordableTable, datarecording.RecordableRow{})

	spikes, _, err := reader.Query(ctx, datarecording.SpikeTable,
		datarecording.QueryParams{OrderBy: "Node, Step"})
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	var nodes []string
	for _, r := range spikes {
		row := r.(*datarecording.SpikeRow)
		if counts[row.Node] == 0 {
			nodes = append(nodes, row.Node)
		}
		counts[row.Node]++
	}

	fmt.Fprintln(out, "spikes:")
	for _, n := range nodes {
		fmt.Fprintf(out, "  %s: %d\n", n, counts[n])
	}

	last, _, err := reader.Query(ctx, datarecording.RecordableTable,
		datarecording.QueryParams{
			Where:   "Step = (SELECT MAX(Step) FROM recordables)",
			OrderBy: "Node, Name",
		})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "last recorded values:")
	for _, r := range last {
		row := r.(*datarecording.RecordableRow)
		fmt.Fprintf(out, "  %s.%s @ %.1f ms: %g\n",
			row.Node, row.Name, row.TimeMS, row.Value)
	}

	return nil
}
