// Command snippy is the terminal client for a snippy server: sign in, then
// list, search, show, add, edit and remove your snippets.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
