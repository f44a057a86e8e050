package main

import (
	"context"
	"os"

	"k8s.io/component-base/cli"
)

func main() {
	ctx := context.Background()
	cmd := NewCoreServerCommand(ctx)
	code := cli.Run(cmd)
	os.Exit(code)
}
