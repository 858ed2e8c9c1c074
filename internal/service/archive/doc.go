// Package archive assembles the deployable artifact from the target's
// source tree, the installed dependency tree and the composed environment
// file, all merged at the archive root.
//
// Archives are deterministic: entries are sorted by path and written with
// zeroed timestamps and a fixed mode, so identical inputs produce
// byte-identical bytes and remote diffing stays meaningful. Assembly is
// all-or-nothing; a partial archive never occupies the final location.
package archive
