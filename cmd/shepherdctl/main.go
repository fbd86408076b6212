// Command shepherdctl is the operator CLI: scheduled publishing, the daily
// reflection and schema status.
package main

import (
	"context"
	"fmt"
	"os"

	"shepherd/internal/bootstrap"
	"shepherd/internal/cli"
	"shepherd/internal/config"
)

func main() {
	root := cli.NewRootCommand(func(ctx context.Context) (*cli.Runtime, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
		if err != nil {
			return nil, err
		}
		return &cli.Runtime{Config: cfg, DB: db}, nil
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
