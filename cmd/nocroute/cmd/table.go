package cmd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/sarchlab/nocroute/monitoring"
	"github.com/sarchlab/nocroute/noc/networking/networkconnector"
	"github.com/sarchlab/nocroute/noc/networking/routing"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table ROUTER",
	Short: "Print the routing table of a router.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		router, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrap(err, "parsing ROUTER")
		}

		network, err := buildNetwork(networkconnector.MakeConnector())
		if err != nil {
			return err
		}

		if router < 0 || router >= network.NumRouters() {
			return errors.Errorf("router %d does not exist", router)
		}

		printTable(cmd.OutOrStdout(), network.Unit(router))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}

func printTable(w io.Writer, u *routing.Unit) {
	links := monitoring.TableOf(u)

	header := []string{"Link", "Direction", "Weight"}
	for vnet := 0; vnet < u.Table().NumVnets(); vnet++ {
		header = append(header, "Vnet "+strconv.Itoa(vnet))
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)

	for _, l := range links {
		row := []string{
			strconv.Itoa(l.Link),
			l.Direction,
			strconv.Itoa(l.Weight),
		}
		row = append(row, l.Dests...)

		table.Append(row)
	}

	table.Render()
}
