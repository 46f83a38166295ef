package main

import (
	"os"

	"github.com/todoflow-labs/todo-client/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
