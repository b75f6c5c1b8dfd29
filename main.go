package main

import "github.com/jcdickinson/rsdoc/cmd"

func main() {
	cmd.Execute()
}
