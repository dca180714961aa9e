package main

import "github.com/sadopc/eprotocol/internal/cli"

func main() {
	cli.Execute()
}
