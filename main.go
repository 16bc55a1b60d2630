package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/cwarden/wkcal/cmd"
)

func main() {
	// WKCAL_* variables may come from a .env in the working directory
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
