// Kinds command: list the kinds known to the datastore.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the kinds present in the datastore",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection()
		if err != nil {
			return err
		}
		defer conn.Close()

		kinds, err := conn.GetTableList()
		if err != nil {
			return err
		}

		if flagJSON {
			out, err := json.MarshalIndent(kinds, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		for _, kind := range kinds {
			fmt.Println(kind)
		}
		return nil
	},
}
