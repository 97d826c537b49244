package types

// DefaultVersion is reported for packages whose manifest declares no version.
// It is also the placeholder written into unversioned manifests while packing.
const DefaultVersion = "0.0.0"

// Package is one entry of a monorepo package listing.
type Package struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Private  bool   `json:"private"`
	Location string `json:"location"`
}

// PackageReference identifies an installed package by name and version.
type PackageReference struct {
	Name    string
	Version string
}

// String renders the reference as name@version, substituting DefaultVersion
// for an empty version.
func (r PackageReference) String() string {
	v := r.Version
	if v == "" {
		v = DefaultVersion
	}
	return r.Name + "@" + v
}
