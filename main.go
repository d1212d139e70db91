package main

import (
	"github.com/linesmerrill/shift-handover/cmd"
)

func main() {
	cmd.Execute()
}
