package main

import (
	"github.com/rakshit0111/chat-app/cmd/server/cmd"
)

func main() {
	cmd.Execute()
}
