package main

import "github.com/felixzheng98/cedarlink/cmd"

func main() {
	cmd.Execute()
}
