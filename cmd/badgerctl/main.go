package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/augesrob/Badger-sub000/internal/cli"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
