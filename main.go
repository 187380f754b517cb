package main

import "figure-sync/cmd"

func main() {
	cmd.Execute()
}
