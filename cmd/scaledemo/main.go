package main

import (
	"scaledemo/cmd"
)

func main() {
	cmd.Execute()
}
