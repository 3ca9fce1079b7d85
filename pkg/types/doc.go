// Package types defines the model metadata, predicate trees, native query
// types, datastore values, and standard error types shared by the Kindling
// query-translation layer and the embedded datastore.
package types
