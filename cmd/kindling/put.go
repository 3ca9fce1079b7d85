// Put command: seed one entity of a kind from a JSON object.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

var (
	putKind string
	putData string
)

var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Insert one entity of a kind from a JSON object",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var props map[string]any
		if err := json.Unmarshal([]byte(putData), &props); err != nil {
			return fmt.Errorf("parse --data: %w", err)
		}

		conn, err := openConnection()
		if err != nil {
			return err
		}
		defer conn.Close()

		columns := make([]string, 0, len(props))
		for col := range props {
			columns = append(columns, col)
		}
		model := adHocModel(putKind, columns)

		row := make(types.Row, len(props))
		for col, v := range props {
			row[col] = v
		}

		cursor := conn.NewCursor()
		stmt := &types.InsertStatement{Fields: model.Fields, Rows: []types.Row{row}, Raw: true}
		if err := cursor.ExecuteQuery(model, stmt); err != nil {
			return err
		}

		key, err := cursor.LastRowID()
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}

func init() {
	putCmd.Flags().StringVar(&putKind, "kind", "", "entity kind (required)")
	putCmd.Flags().StringVar(&putData, "data", "", "entity properties as a JSON object (required)")
	_ = putCmd.MarkFlagRequired("kind")
	_ = putCmd.MarkFlagRequired("data")
}
