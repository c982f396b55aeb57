package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose()}

	if err := cli.Execute(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		for _, hint := range domain.Hints(err) {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		os.Exit(1)
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("GITFLOW_DEBUG"), "1") || strings.EqualFold(os.Getenv("GITFLOW_DEBUG"), "true")
}
