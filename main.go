// Package main is the entry point for the velc CLI.
package main

import "vel.dev/pkg/velc/cmd"

func main() {
	cmd.Execute()
}
