package main

import (
	"github.com/dl-alexandre/gdm/internal/cli"
)

func main() {
	_ = cli.Execute()
}
