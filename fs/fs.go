package appfs

import "embed"

// FS holds the app's embedded assets: goose SQL migrations and email
// templates. Embedding keeps the single binary deployable without a
// working-directory layout.
//
//go:embed migrations all:templates
var FS embed.FS
