// Package function holds the domain model shared across the deploy pipeline:
// the local deployment target, the remote resource descriptor, and the
// create-vs-update decision.
//
// Target is built once per invocation from resolved configuration and carries
// the registry constraints (timeout and memory bounds, naming rules) so a bad
// configuration fails before any packaging or network activity.
package function
