package main

import "github.com/OpenTraceLab/OpenTraceDie/cmd/otd/cmd"

func main() {
	cmd.Execute()
}
