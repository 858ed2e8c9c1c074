// Package bundler resolves a local dependency manifest into a tree of
// installed packages rooted at a scratch directory.
//
// Installation is a pluggable strategy (Installer); the default strategy
// shells out to pip for Python runtimes. Pure interpreted-language packages
// are the supported case: nothing verifies binary compatibility of compiled
// extensions with the remote runtime.
package bundler
