package main

import "github.com/iksnae/chatloop/cmd"

func main() {
	cmd.Execute()
}
