package main

import (
	"os"

	"leasesync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
