// Flush command: delete every entity of the given kinds.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flushCmd = &cobra.Command{
	Use:   "flush [kind...]",
	Short: "Delete every entity of the given kinds",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection()
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := conn.FlushKinds(args); err != nil {
			return err
		}
		fmt.Println("Flushed", len(args), "kind(s)")
		return nil
	},
}
