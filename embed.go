package physiotrainer

import "embed"

// WebFS holds the browser UI served at /.
//
//go:embed web
var WebFS embed.FS
