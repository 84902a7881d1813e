package main

import "github.com/sadopc/petquest/internal/cli"

func main() {
	cli.Execute()
}
