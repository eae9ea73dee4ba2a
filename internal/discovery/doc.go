// Package discovery resolves the sidecar executable on disk.
//
// Sidecars ship beside the host binary, optionally suffixed with the Rust-style
// target triple of the platform they were built for (api-x86_64-unknown-linux-gnu).
// Resolution order:
//  1. An explicit path, used as-is.
//  2. Each search directory (the host executable's directory by default),
//     trying the plain name and then the target-triple name.
//  3. The system PATH.
package discovery
