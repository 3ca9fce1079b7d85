// Get command: run an equality query through the full driver path.
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

var (
	getKind    string
	getFilters []string
	getLimit   int
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Query a kind with equality filters",
	Long: `Query a kind through the driver's lowering, caching, and pagination
path. Filters are col=value pairs combined with AND; output columns are
the entity id plus the filtered columns.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection()
		if err != nil {
			return err
		}
		defer conn.Close()

		columns := make([]string, 0, len(getFilters))
		for _, f := range getFilters {
			if col, _, ok := strings.Cut(f, "="); ok {
				columns = append(columns, col)
			}
		}
		model := adHocModel(getKind, columns)

		where, err := parseFilters(model, getFilters)
		if err != nil {
			return err
		}

		cursor := conn.NewCursor()
		if err := cursor.ExecuteQuery(model, &types.SelectQuery{Where: where}); err != nil {
			return err
		}

		var rows [][]any
		for {
			page, err := cursor.FetchMany(getLimit)
			if err != nil {
				return err
			}
			if len(page) == 0 {
				break
			}
			rows = append(rows, page...)
		}

		return printRows(model.Columns(), rows)
	},
}

func init() {
	getCmd.Flags().StringVar(&getKind, "kind", "", "entity kind (required)")
	getCmd.Flags().StringArrayVar(&getFilters, "filter", nil, "equality filter col=value (repeatable)")
	getCmd.Flags().IntVar(&getLimit, "limit", 100, "page size per fetch")
	_ = getCmd.MarkFlagRequired("kind")
}
