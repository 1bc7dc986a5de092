package main

import "taskhub/internal/cli"

func main() {
	cli.Execute()
}
