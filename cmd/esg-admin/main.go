// Package main provides the entry point for the esg-admin CLI tool.
package main

import "github.com/turtacn/esg/cmd/cli"

func main() {
	cli.Execute()
}
