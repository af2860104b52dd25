package main

import "github.com/relr-dev/relr/cmd"

func main() {
	cmd.Execute()
}
