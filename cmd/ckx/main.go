// Command ckx manages the build profiles and build configuration of a catkin
// workspace.
package main

import "github.com/mesh-intelligence/ckx/internal/cli"

func main() {
	cli.Execute()
}
