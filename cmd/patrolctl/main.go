package main

import "github.com/mr1hm/go-cyber-patrol/internal/cli"

func main() {
	cli.Execute()
}
