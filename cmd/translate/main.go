package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-translate/internal/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{ConfigPath: configPath()}

	root, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func configPath() string {
	if path := os.Getenv("TRANSLATE_CONFIG"); path != "" {
		return path
	}
	return ""
}
