// Package entity defines the JSON envelopes of the web layer.
package entity

// ApiError is the body returned for every failed request: an HTTP status plus
// a human-readable message, nothing internal.
type ApiError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// StatusMsg acknowledges operations that return no object.
type StatusMsg struct {
	Status string `json:"status"`
}
