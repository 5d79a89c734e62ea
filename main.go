// tally is a terminal client for a personal finance service.
package main

import "github.com/theirongolddev/tally/cmd"

func main() {
	cmd.Execute()
}
