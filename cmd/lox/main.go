package main

import (
	"os"

	"github.com/msto63/lox/cmd/lox/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
