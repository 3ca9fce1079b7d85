// Init command: create configuration and data directories, then verify
// the embedded datastore attaches cleanly.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kindling/internal/datastore"
	"github.com/mesh-intelligence/kindling/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kindling storage",
	Long:  "Create configuration and data directories, then initialize the embedded datastore.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := resolveDataDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}

		store := datastore.NewLocalStore()
		if err := store.Attach(types.Config{DataDir: dataDir}); err != nil {
			return fmt.Errorf("initialize datastore: %w", err)
		}
		if err := store.Detach(); err != nil {
			return fmt.Errorf("detach datastore: %w", err)
		}

		fmt.Println("Initialized kindling datastore in", dataDir)
		return nil
	},
}
