// Package driver provides the public API for opening a Kindling
// connection over the embedded datastore, while keeping implementation
// details internal.
package driver

import (
	"fmt"

	"github.com/mesh-intelligence/kindling/internal/datastore"
	"github.com/mesh-intelligence/kindling/internal/driver"
	"github.com/mesh-intelligence/kindling/pkg/types"
)

// Open attaches an embedded datastore under cfg.DataDir and returns a
// connection bound to it. Closing the connection releases the store.
//
// Example:
//
//	conn, err := driver.Open(types.Config{DataDir: ".kindling-db"})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
func Open(cfg types.Config) (types.Connection, error) {
	store := datastore.NewLocalStore()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach datastore: %w", err)
	}
	return driver.NewConnection(store, nil, cfg), nil
}
