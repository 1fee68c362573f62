package main

import (
	"os"

	"github.com/dpshade/book-editor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
