package main

import "github.com/perimetra/scanward/internal/cli"

func main() {
	cli.Execute()
}
