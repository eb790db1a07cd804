package main

import "interview-screener/internal/cli"

func main() {
	cli.Execute()
}
