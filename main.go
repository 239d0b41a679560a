package main

import "github.com/dogfolk/recorder/cmd"

func main() {
	cmd.Execute()
}
