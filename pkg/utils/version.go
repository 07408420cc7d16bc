// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Build identity, overridden with -ldflags at release time. The defaults
// mark a local dev build.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
