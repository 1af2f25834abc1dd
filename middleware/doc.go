// Package middleware adapts govalid schemas to net/http. It works with any
// router that accepts func(http.Handler) http.Handler, including chi.
package middleware
