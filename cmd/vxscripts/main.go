package main

import "vxscripts/internal/cli"

func main() {
	cli.Execute()
}
