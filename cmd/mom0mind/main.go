package main

import "github.com/bbookman/mom0mind/internal/cli"

func main() {
	cli.Execute()
}
