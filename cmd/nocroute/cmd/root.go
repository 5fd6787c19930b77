// Package cmd provides the command-line interface of nocroute.
package cmd

import (
	"github.com/sarchlab/nocroute/config"
	"github.com/sarchlab/nocroute/noc/networking/networkconnector"
	"github.com/sarchlab/nocroute/sim/hooking"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nocroute",
	Short: "nocroute computes the routing decisions of on-chip networks.",
	Long: `nocroute builds a network from a configuration file, fills the ` +
		`routing tables with shortest paths, and reports the output port ` +
		`that every router selects for a packet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		logger, err = newLogger(verbose)
		if err != nil {
			return err
		}

		cfg, err = config.Load(configPath)

		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"YAML file that describes the network")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log every routing decision")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	c := zap.NewProductionConfig()
	c.Encoding = "console"
	c.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	return c.Build()
}

// buildNetwork builds the configured network on top of conn.
func buildNetwork(
	conn networkconnector.Connector,
) (*networkconnector.Network, error) {
	conn = conn.WithLogger(logger)

	if verbose {
		conn = conn.WithHook(hooking.NewLogHook(logger))
	}

	return cfg.Build(conn)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()

	_ = logger.Sync()

	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
