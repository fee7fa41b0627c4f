// autogit watches directories, and commits then pushes their changes to
// their git remote as they happen.
package main

import (
	"fmt"
	"os"

	"github.com/bpineau/autogit/cmd"
)

// exit is swapped by tests, to check the exit status
var exit = os.Exit

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "autogit: %v\n", err)
	exit(1)
}
