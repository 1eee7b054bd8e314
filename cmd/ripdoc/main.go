// Command ripdoc indexes, searches, and renders skeletons of a local Rust
// crate's public API via rustdoc JSON.
package main

import "github.com/Alb-O/ripdoc/cmd"

func main() {
	cmd.Execute()
}
