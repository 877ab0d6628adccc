// Package cmd provides the command-line interface of stateneuron.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envPrefix prefixes the environment variables that provide flag defaults.
const envPrefix = "STATENEURON_"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stateneuron",
	Short: "Simulate a state neuron fed by Poisson input populations.",
	Long: `stateneuron simulates a neuron that estimates its input intensity ` +
		`from the sliding-window occupancy of a feedback and a prediction ` +
		`population and fires Poisson spikes gated by a trial schedule. ` +
		`Every flag can be defaulted by an environment variable named ` +
		envPrefix + `<FLAG>, for example ` + envPrefix + `N_FBK, which may ` +
		`also come from a .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "",
		"Load environment variables from this file instead of ./.env")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func loadEnvironment(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	return applyEnvDefaults(cmd.Flags())
}

// applyEnvDefaults sets every flag not given on the command line from its
// environment variable, if present.
func applyEnvDefaults(flags *pflag.FlagSet) error {
	var firstErr error

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}

		value, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		if err := flags.Set(f.Name, value); err != nil {
			firstErr = fmt.Errorf("%s: %w", envName(f.Name), err)
		}
	})

	return firstErr
}

func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}
