// Package envfile composes the environment file shipped inside the artifact.
//
// The composition merges an optional base KEY=VALUE file with a whitelist of
// process environment variables, whitelisted values winning on collision.
// The composed file is always written fresh from the composer's own output;
// an environment file found inside the target root is never copied into the
// bundle, so a developer's local secrets file cannot leak into the artifact.
package envfile
