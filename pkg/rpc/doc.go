// Package rpc correlates PRPC requests with their responses and
// dispatches inbound commands to handlers.
//
// The Client side assigns each outgoing request a sequence id from a
// fixed window managed as a free list, sends the encoded frame, and
// blocks until a response frame (ok, result or error) with the same
// sequence id arrives. Notifications carry the wildcard sequence id
// and expect no response.
//
// The Server side maps identifiers to handlers. Slash-separated
// identifiers form a hierarchy: a request for "gpio/led/set" falls
// back to a handler registered for "gpio/led" or "gpio" when no exact
// match exists. Handler results become result frames, nil results
// become ok frames, and handler errors become error frames, always
// preserving the request's sequence id. Wildcard requests never
// produce a response.
package rpc
