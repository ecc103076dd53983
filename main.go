package main

import (
	"github.com/simonheimlicher/dprint-vscode/cmd"
)

func main() {
	cmd.Execute()
}
