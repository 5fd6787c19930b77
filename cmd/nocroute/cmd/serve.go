package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sarchlab/nocroute/monitoring"
	"github.com/sarchlab/nocroute/noc/networking/networkconnector"
	"github.com/sarchlab/nocroute/noc/networking/routing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer routing queries over HTTP.",
	Long: "`serve` exposes /api/network, /api/route/{src}/{dst}, " +
		"/api/table/{router}, and the Prometheus /metrics endpoint.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		port, _ := cmd.Flags().GetInt("port")
		open, _ := cmd.Flags().GetBool("open")

		reg := prometheus.NewRegistry()
		conn := networkconnector.MakeConnector().
			WithMetrics(routing.NewMetrics(reg))

		network, err := buildNetwork(conn)
		if err != nil {
			return err
		}

		monitor := monitoring.NewMonitor(network).
			WithLogger(logger).
			WithGatherer(reg).
			WithPortNumber(port)

		url, err := monitor.StartServer()
		if err != nil {
			return err
		}

		cmd.Printf("Serving routes on %s\n", url)

		if open {
			if err := browser.OpenURL(url + "/api/network"); err != nil {
				logger.Warn("cannot open browser", zap.Error(err))
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()

		return monitor.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0,
		"Port of the server, random if below 1000")
	serveCmd.Flags().Bool("open", false, "Open the server in a browser")
}
