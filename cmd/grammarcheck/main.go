package main

import "grammarcheck/internal/cli"

func main() {
	cli.Execute()
}
