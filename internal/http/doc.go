// Package http is the gin boundary of the catalog.
//
// HTML routes (/, /add_book, /borrow_book/:id, /return_book/:id,
// /delete_book/:id, /check_book) delegate to catalog.Service and redirect
// back to the listing with flash messages. The JSON API, health, metrics and
// task endpoints sit alongside them. Dependencies arrive through
// RouterConfig.
package http
