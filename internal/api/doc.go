// Package api exposes the clinic over HTTP. Handlers decode and validate
// requests, call the clinic service and translate its errors to status codes.
// Money travels as decimal strings and dates as YYYY-MM-DD.
package api
