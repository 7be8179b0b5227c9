//go:build !cgo

package store

// cgoUniqueViolation: without cgo mattn/go-sqlite3 is a stub that never
// returns sqlite3.Error values.
func cgoUniqueViolation(err error) (unique, ok bool) {
	return false, false
}
