package main

import "mapletrack/cmd/mtctl/root"

func main() {
	root.Execute()
}
