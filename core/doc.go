// Package core defines the contract between the pathlibfs Path type and the
// per-protocol storage backends, together with the protocol registry that
// resolves URI schemes to backend instances.
//
// # Design Philosophy
//
// The core package follows these principles:
//
//   - Zero dependencies: Only uses Go standard library
//   - One wide required interface: Backend covers the primitive storage
//     operations every driver must provide (list, read, write, remove, move,
//     copy, upload, download)
//   - Optional capabilities: Use type assertions for driver-specific features
//     such as presigned URLs (Signer)
//   - Stdlib compatibility: files are fs.File, failures are *fs.PathError
//     wrapping stdlib sentinel errors where one applies
//
// # Protocol Registry
//
// Backend packages register themselves in init with Register, keyed by one or
// more scheme aliases ("s3" and "s3a" share one driver). Applications enable a
// protocol by importing the backend package for its side effect, the same way
// database/sql drivers are enabled:
//
//	import (
//	    "github.com/roy-ht/pathlibfs"
//	    _ "github.com/roy-ht/pathlibfs/s3"
//	)
//
// Resolve splits the scheme off a URI, looks up the driver and returns a
// shared backend instance. Instances are cached per (protocol, options)
// combination behind a mutex so every Path derived from the same root shares
// one handle; ClearInstanceCache drops the cache.
//
// # Error Conventions
//
// Backends translate driver-native failures to the stdlib sentinels
// (fs.ErrNotExist, fs.ErrExist, fs.ErrPermission) and wrap them in
// *fs.PathError via PathError. The path-level error taxonomy
// (ErrUnknownProtocol, ErrProtocolMismatch, ...) also lives here so both the
// Path type and backends agree on the sentinels.
package core
