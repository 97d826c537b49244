// Command pkl installs packages from local monorepo checkouts into the
// current project without publishing them.
package main

import "github.com/mesh-intelligence/pkl/internal/cli"

func main() {
	cli.Execute()
}
