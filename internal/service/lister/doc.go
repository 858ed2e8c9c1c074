// Package lister implements the read-only listing operation: it pages
// through the remote registry and prints each function descriptor in the
// order the registry provides.
package lister
