package catalog

const (
	minCategoryID = 1
	maxCategoryID = 15

	duplicateAliasSuffix = "-0"
)

// Accepts reports whether the catalog is expected to accept p on add or edit.
func Accepts(p Product) bool {
	if p.CategoryID < minCategoryID || p.CategoryID > maxCategoryID {
		return false
	}
	if p.Status != 0 && p.Status != 1 {
		return false
	}
	if p.Hit != 0 && p.Hit != 1 {
		return false
	}

	return true
}

// DuplicateAlias returns the alias the catalog assigns to a second product
// whose title matches the product that got alias.
func DuplicateAlias(alias string) string {
	return alias + duplicateAliasSuffix
}
