// Package subprocess provides the default process launcher for the sidecar.
//
// This package implements the Launcher interface by spawning the sidecar
// executable with piped stdin, stdout and stderr. Output is read line by line
// on background goroutines and delivered as an event stream that ends with a
// terminated event once the process has exited.
package subprocess
