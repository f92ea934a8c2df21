package common

import "path"

// PkgAlias returns the default import name of a package path, its last element.
// The empty path has the empty alias.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// Qualified names a type the way profiles refer to it: "store.Order" when short,
// "caster/internal/fixture/store.Order" otherwise. Types without a package keep their name.
func Qualified(pkgPath, name string, short bool) string {
	if pkgPath == "" {
		return name
	}

	if short {
		pkgPath = PkgAlias(pkgPath)
	}

	return pkgPath + "." + name
}
