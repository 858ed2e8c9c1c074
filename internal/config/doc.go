// Package config resolves deployment options into one immutable Config
// before any core component runs.
//
// Sources are layered with fixed precedence: explicit CLI flags beat LAMBDA_*
// process environment variables, which beat the optional YAML settings file,
// which beats the built-in defaults. The core packages receive the resolved
// struct and never consult ambient state themselves.
package config
