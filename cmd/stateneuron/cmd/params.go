package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/stateneuron/stateneuron"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the default status of a state neuron as JSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, _ := cmd.Flags().GetBool("all")

		neuron := stateneuron.MakeBuilder().Build(neuronName)
		status := neuron.GetStatus()

		if !all {
			keep := make(map[string]any)
			for _, name := range stateneuron.ParameterNames() {
				keep[name] = status[name]
			}

			for _, name := range stateneuron.DerivedNames() {
				keep[name] = status[name]
			}

			status = keep
		}

		b, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))

		return err
	},
}

func init() {
	paramsCmd.Flags().Bool("all", false,
		"Include the state, with the window buffers")
	rootCmd.AddCommand(paramsCmd)
}
