package main

import (
	"fmt"
	"os"

	"github.com/dverney/todo-api/cmd/cli/auth"
	"github.com/dverney/todo-api/cmd/cli/root"
	"github.com/dverney/todo-api/cmd/cli/todos"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	todos.InitTodos(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
