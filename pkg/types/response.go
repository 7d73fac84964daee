// Package types holds the JSON envelope shared by every kiosk and
// kitchen endpoint.
package types

// SuccessEnvelope wraps successful payloads: cart views, board
// listings, placed-order ids.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Code is a stable machine
// code (NOT_FOUND, EMPTY_CART, ...); Details is populated only for
// codes that allow it, such as field-level validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError for error responses.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
