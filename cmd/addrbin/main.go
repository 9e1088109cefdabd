package main

import "github.com/binforge/addrbin/cmd/addrbin/cmd"

func main() {
	cmd.Execute()
}
