package main

import "github.com/agentic-research/shapematch/cmd"

func main() {
	cmd.Execute()
}
