package main

import "learnlog/internal/cli"

func main() {
	cli.Execute()
}
