package main

import "secscan-go/cmd"

func main() {
	cmd.Execute()
}
