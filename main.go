package main

import "tubeconv/cmd"

func main() {
	cmd.Execute()
}
