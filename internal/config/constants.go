package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./instance/library.sqlite"

	// DefaultMaxUploadBytes caps request bodies, cover images included (16 MiB)
	DefaultMaxUploadBytes = 16 * 1024 * 1024
)
