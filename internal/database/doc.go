// Package database provides the data access layer for the catalog.
//
// The catalog is a single books table kept in an embedded SQLite file and
// accessed through gorm:
//
//	db, err := database.NewDatabase("./instance/library.sqlite", logger.Warn)
//	id, err := db.InsertBook("Dune", "Frank Herbert", nil)
//	changed, err := db.SetAvailability(id, true, false) // borrow
//
// Every write runs in gorm's default transaction and is committed before the
// call returns. Availability changes are conditional updates, so two
// concurrent borrows of the same book cannot both succeed.
package database
