//go:build !windows && !linux

package backend

// No native backend; only dryrun is available.
const nativeName = ""

var natives = map[string]factory{}
