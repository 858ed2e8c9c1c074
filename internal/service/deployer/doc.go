// Package deployer orchestrates one full deploy for one target directory:
// dependency bundling, environment composition, artifact packaging, and
// finally reconciliation with the remote registry.
//
// Packaging fully precedes synchronization, so an interrupted packaging run
// never leaves remote state mutated. Concurrent deploys of the same logical
// name are unsafe (the create-vs-update decision can race); serializing them
// is the operator's responsibility.
package deployer
