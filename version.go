package formwizard

import _ "embed"

// Version is the release of the formwizard module and its commands.
//
//go:embed VERSION
var Version string
