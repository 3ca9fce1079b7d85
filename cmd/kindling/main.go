// Package main provides the kindling CLI: local inspection and seeding of
// the embedded datastore through the full driver path.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
