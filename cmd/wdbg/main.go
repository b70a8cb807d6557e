package main

import (
	"os"

	"github.com/go-wdbg/wdbg/cmd/wdbg/cmds"
)

func main() {
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
