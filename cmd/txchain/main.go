package main

import "github.com/bitfsorg/txchain-go/cmd/txchain/cmd"

func main() {
	cmd.Execute()
}
