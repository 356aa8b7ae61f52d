package main

import "togglassistant/cmd"

func main() {
	cmd.Execute()
}
