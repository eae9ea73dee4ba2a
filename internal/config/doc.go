// Package config provides configuration types for the sidecar supervisor.
package config
