package main

import "github.com/KostasZigo/clony/cmd"

func main() {
	cmd.Execute()
}
