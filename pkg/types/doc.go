// Package types defines the packages, references, pipeline stages and
// standard errors shared by the pkl packages.
package types
