package main

import "ragcli/cmd"

func main() {
	cmd.Execute()
}
