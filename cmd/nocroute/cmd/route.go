package cmd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/sarchlab/nocroute/datarecording"
	"github.com/sarchlab/nocroute/noc/networking/networkconnector"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route SRC DST",
	Short: "Walk a packet from one endpoint to another.",
	Long: "`route SRC DST` prints the output port that every router on the " +
		"path selects. `--record` also writes the decisions to SQLite.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrap(err, "parsing SRC")
		}

		dst, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrap(err, "parsing DST")
		}

		vnet, _ := cmd.Flags().GetInt("vnet")
		record, _ := cmd.Flags().GetBool("record")
		dbName, _ := cmd.Flags().GetString("db")

		conn := networkconnector.MakeConnector()

		var recorder *datarecording.RouteRecorder
		if record {
			recorder = datarecording.NewRouteRecorder(datarecording.New(dbName))
			conn = conn.WithHook(recorder)
		}

		network, err := buildNetwork(conn)
		if err != nil {
			return err
		}

		hops, walkErr := network.Walk(src, dst, vnet)
		printHops(cmd.OutOrStdout(), hops)

		if recorder != nil {
			recorder.Flush()
		}

		return walkErr
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().Int("vnet", 0, "Virtual network of the packet")
	routeCmd.Flags().Bool("record", false, "Record the decisions to SQLite")
	routeCmd.Flags().String("db", "",
		"Database name used with --record, generated if empty")
}

func printHops(w io.Writer, hops []networkconnector.Hop) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Hop", "Router", "Inport", "Outport"})

	for i, h := range hops {
		table.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(h.Router),
			h.InportDirection.String() + " (" + strconv.Itoa(h.Inport) + ")",
			h.OutportDirection.String() + " (" + strconv.Itoa(h.Outport) + ")",
		})
	}

	table.Render()
}
