package main

import "dbusexplorer/internal/cli"

func main() {
	cli.Execute()
}
