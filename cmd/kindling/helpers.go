// Shared helpers for kindling CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/kindling/internal/datastore"
	"github.com/mesh-intelligence/kindling/internal/driver"
	"github.com/mesh-intelligence/kindling/pkg/types"
)

// openConnection resolves the data directory, attaches an embedded store,
// and builds a driver connection over it. The caller must defer
// conn.Close().
func openConnection() (*driver.Connection, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		DataDir:         dataDir,
		AppLabel:        configAppLabel,
		CacheTTLSeconds: configCacheTTL,
	}

	store := datastore.NewLocalStore()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach datastore: %w", err)
	}

	return driver.NewConnection(store, nil, cfg), nil
}

// adHocModel builds a model for CLI use from a kind and the columns at
// hand. The primary key is always "id"; every other column is typed
// string, which is enough for equality filters and seeding.
func adHocModel(kind string, columns []string) *types.Model {
	fields := []*types.Field{
		{Name: "id", Column: "id", Storage: types.StorageKey, PrimaryKey: true},
	}
	sort.Strings(columns)
	for _, col := range columns {
		if col == "id" {
			continue
		}
		fields = append(fields, &types.Field{
			Name:     col,
			Column:   col,
			Storage:  types.StorageString,
			Nullable: true,
		})
	}
	return &types.Model{AppLabel: configAppLabel, Kind: kind, Fields: fields}
}

// parseFilters turns col=value arguments into predicate-tree leaves
// against the model. Values parse as int, float, or bool when they look
// like one, otherwise they stay strings.
func parseFilters(model *types.Model, args []string) (*types.Node, error) {
	where := types.And()
	for _, arg := range args {
		col, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q is not col=value", arg)
		}
		field := model.FieldByColumn(col)
		if field == nil {
			return nil, fmt.Errorf("unknown filter column %q", col)
		}
		where.Children = append(where.Children, types.Leaf{
			Column: field.Column,
			Field:  field,
			Lookup: types.LookupExact,
			Value:  parseScalar(raw),
		})
	}
	return where, nil
}

// parseScalar guesses the narrowest type for a CLI value.
func parseScalar(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// printRows writes result tuples either as aligned text or as a JSON
// array of arrays when --json is set.
func printRows(columns []string, rows [][]any) error {
	if flagJSON {
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(strings.Join(columns, "\t"))
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = fmt.Sprintf("%v", v)
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	return nil
}
