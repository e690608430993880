package version

// VERSION is the current release of reporag.
const VERSION = "v0.1.0"

// GITCOMMIT is the git commit the binary was built from.
// It is filled in at build time via -ldflags.
var GITCOMMIT = "unknown"
