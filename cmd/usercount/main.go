// Command usercount analyses occupancy logs from the command line.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/usercount/internal/cli"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	_ = godotenv.Overload()
	os.Exit(cli.Execute(version))
}
