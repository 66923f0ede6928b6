// Package main is the entry point for the workinator CLI.
package main

import "github.com/praclabs/workinator/cmd"

func main() {
	cmd.Execute()
}
