// Package session keeps flash messages alive across the redirect that
// follows every form post. Sessions are stored in the catalog's SQLite
// database through scs/sqlite3store and exposed to gin via LoadAndSave.
package session
