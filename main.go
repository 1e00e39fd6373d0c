package main

import (
	"os"

	"github.com/deepsourcelabs/xaml-sleuth/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
