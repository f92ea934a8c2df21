package utils

import (
	"path"
	"strings"
)

// SplitFuncName splits a runtime function name into the alias of its package and the
// name within the package:
//
//	"example.com/shop/store.Parse"     -> "store", "Parse"
//	"caster/node.(*Stem).For-fm"       -> "node", "(*Stem).For-fm"
//	"main.main"                        -> "main", "main"
func SplitFuncName(full string) (pkgAlias, name string) {
	_, last := path.Split(full)
	pkgAlias, name, _ = strings.Cut(last, ".")

	return pkgAlias, name
}
