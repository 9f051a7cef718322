// Package postgres embeds the SQL migrations so deploy tooling can apply
// them without shipping the files separately.
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
