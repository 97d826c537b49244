// Package pkl holds build metadata for the pkl binary.
package pkl

// Version is the pkl release version.
const Version = "0.3.0"
