// Package domain contains the core entities and value objects for extauth.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (HTTP, stdin/stdout, logging) and contains only
// the types exchanged between the protocol codec, the dispatcher and the
// identity backend.
//
// # Entities
//
//   - [Frame]: One length-prefixed request read from the host
//   - [Command]: A parsed request (auth, isuser, setpass or unknown)
//   - [BackendResult]: The normalized outcome of a backend operation
//
// # Design Principles
//
// Values here live for a single loop iteration and are never shared
// between iterations.
package domain
