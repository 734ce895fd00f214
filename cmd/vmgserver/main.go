package main

import "github.com/ikalevatykh/vmg30/internal/cmd"

func main() {
	cmd.Execute()
}
