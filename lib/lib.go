// Package lib embeds the metadata of the builtin class library.
package lib

import (
	_ "embed"

	"github.com/chazu/avm2/abc"
)

//go:embed builtins.yaml
var builtinsYAML []byte

// Builtins parses the builtin class bundle. The classes it names are
// implemented by the builders vm.RegisterBuiltins installs.
func Builtins() (*abc.Bundle, error) {
	return abc.ParseBundleYAML(builtinsYAML)
}
