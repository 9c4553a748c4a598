package main

import (
	"context"

	"tcgsearch/cmd/tcgsearch/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
