package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hrctl:", err)
		os.Exit(1)
	}
}
