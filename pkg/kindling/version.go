// Package kindling carries project-level metadata.
package kindling

// Version is the current Kindling release.
const Version = "0.1.0"
