package main

import "github.com/edalquez/facegate/cmd"

func main() {
	cmd.Execute()
}
