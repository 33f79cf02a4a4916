package main

import "github.com/AbhishekManjunath98/flutter/cmd/flutter/cmd"

func main() {
	cmd.Execute()
}
