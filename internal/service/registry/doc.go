// Package registry reconciles a deployment target's desired state with the
// remote serverless-function registry.
//
// The Synchronizer decides create-vs-update by looking the target's name up
// in the registry: absence is the create branch, presence the update branch.
// Updates carry full overwrite semantics for the modeled configuration
// fields. Registry failures map onto a small taxonomy (ErrAuth,
// ErrUnavailable, ErrPayloadTooLarge) and are surfaced with no retries.
//
// The AWS Lambda implementation talks to the control plane through a
// narrowed SDK interface; artifact bytes either travel inline or are staged
// as an S3 object when an uploads bucket is configured.
package registry
