package main

import "github.com/chris/tock/cmd"

func main() {
	cmd.Execute()
}
