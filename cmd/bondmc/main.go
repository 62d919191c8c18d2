package main

import "bondmc/internal/cli"

func main() {
	cli.Execute()
}
