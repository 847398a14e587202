// Package main is the single-binary entrypoint for Wellspring.
package main

import "github.com/wellspring-health/wellspring/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
