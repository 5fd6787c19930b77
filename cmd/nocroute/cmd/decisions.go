package cmd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sarchlab/nocroute/datarecording"
	"github.com/spf13/cobra"
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions DB",
	Short: "List the decisions recorded by `route --record`.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		router, _ := cmd.Flags().GetInt("router")
		limit, _ := cmd.Flags().GetInt("limit")

		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		reader.MapTable(datarecording.RouteDecisionTable,
			datarecording.RouteDecision{})

		params := datarecording.QueryParams{OrderBy: "Seq", Limit: limit}
		if router >= 0 {
			params.Where = "Router = ?"
			params.Args = []any{router}
		}

		results, total, err := reader.Query(cmd.Context(),
			datarecording.RouteDecisionTable, params)
		if err != nil {
			return err
		}

		printDecisions(cmd.OutOrStdout(), results)
		cmd.Printf("%d of %d decisions\n", len(results), total)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(decisionsCmd)
	decisionsCmd.Flags().Int("router", -1, "Only list decisions of a router")
	decisionsCmd.Flags().Int("limit", 0, "Maximum number of decisions")
}

func printDecisions(w io.Writer, results []any) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{
		"Seq", "Router", "Mode", "Vnet", "Dest", "Inport", "Outport", "Local",
	})

	for _, r := range results {
		d := r.(*datarecording.RouteDecision)
		table.Append([]string{
			strconv.FormatUint(d.Seq, 10),
			strconv.Itoa(d.Router),
			d.Mode,
			strconv.Itoa(d.Vnet),
			d.Dest,
			d.InportDirection,
			d.OutportDirection,
			strconv.FormatBool(d.Local),
		})
	}

	table.Render()
}
