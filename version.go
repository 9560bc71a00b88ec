package abacus

import _ "embed"

// Version is the current release of the module, read from the VERSION file.
//
//go:embed VERSION
var Version string
