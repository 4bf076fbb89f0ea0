package main

import "github.com/craftops/panelsim/cmd/panelsim/subcmd"

func main() {
	subcmd.Execute()
}
