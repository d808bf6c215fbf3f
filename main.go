package main

import "github.com/notargets/meshrw/cmd"

func main() {
	cmd.Execute()
}
