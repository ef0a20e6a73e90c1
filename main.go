package main

import "github.com/tightknit/bandsync/cmd"

func main() {
	cmd.Execute()
}
