// Package domain defines the core types shared by every facade of the RPA toolkit.
//
// It holds the sentinel errors that callers match with errors.Is and the
// Settings value that describes how each facade is configured.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
