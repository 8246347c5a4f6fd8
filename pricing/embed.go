// Package pricing holds the embedded default catalog configuration.
package pricing

import _ "embed"

// Default is the built-in product/size price table, used unless a catalog
// file is provided via configuration.
//
//go:embed catalog.yaml
var Default []byte
