package main

import (
	"relocator/internal/cli"
)

func main() {
	cli.Execute()
}
