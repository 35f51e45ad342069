// Package security holds the HTTP hardening middleware: response security
// headers and optional CSRF protection for the catalog's HTML forms.
package security
