// Package types defines the Course and Catalog model, the Loader interface,
// the administrator Session, configuration, and the standard errors shared by
// the catalog loaders, the store, and the CLI.
package types
