package main

import "github.com/simao/jaxe/internal/cmd"

func main() {
	cmd.Execute()
}
