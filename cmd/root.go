package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skellam/mcrun/mcmc"
)

var cfgFile string
var verbose bool
var randomSeed int64

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mcrun",
	Short: "Execution harness for MCMC-style sampling runs",
	Long: `mcrun drives iterative stochastic sampling procedures.
Among other features:

  - Bounded and convergence-driven sequential sampling loops
  - Thinning and burn-in discard
  - Multi-chain ensembles with deterministic seeding (serial, threaded,
    or worker-pool distributed)
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML option file forwarded to the run (default none)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	rootCmd.PersistentFlags().Int64VarP(&randomSeed, "seed", "r", 1, "Master random seed to use")

	rootCmd.AddCommand(demoCmd)

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// loadOptions reads the optional YAML option file and decodes it through
// ConfigFromMap, so keys the harness does not recognize stay available to
// steppers and hooks.
func loadOptions() (*mcmc.Config, error) {
	if cfgFile == "" {
		return &mcmc.Config{}, nil
	}

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		return nil, err
	}

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	return mcmc.ConfigFromMap(raw)
}
