// Package views holds the server's HTML templates.
package views

import "embed"

//go:embed *.html layouts/*.html
var FS embed.FS
