package main

import "github.com/todoflow-labs/todo-client/internal/fakeapi"

func main() {
	fakeapi.Run()
}
