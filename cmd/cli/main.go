package main

import "movietracker/cmd/cli/command"

func main() {
	command.Execute()
}
