package main

import (
	"github.com/mcoot/emojiguess-go/internal/cli"
)

func main() {
	cli.Execute()
}
