package main

import "github.com/railbirdlabs/railbird/internal/cli"

func main() {
	cli.Main()
}
