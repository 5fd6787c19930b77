// Command nocroute computes the per-hop routing decisions of an on-chip
// network.
package main

import "github.com/sarchlab/nocroute/cmd/nocroute/cmd"

func main() {
	cmd.Execute()
}
