// Command dropshipctl runs catalog syncs, materialization and the background
// sync worker from the command line.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
