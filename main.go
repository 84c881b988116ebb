package main

import "postsorter/cmd"

func main() {
	cmd.Execute()
}
