package main

import "github.com/xwartz/cursor-api/cmd/cursorchat/cmd"

func main() {
	cmd.Execute()
}
