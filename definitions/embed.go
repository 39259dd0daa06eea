// Package definitions ships the default prompt and intent definitions.
package definitions

import "embed"

//go:embed *.yaml
var FS embed.FS
