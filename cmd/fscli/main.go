package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/finsight-app/finsight/internal/cli"
	"github.com/finsight-app/finsight/internal/server/config"
)

// commandArgs returns the leading positional arguments, i.e. everything
// before the first flag. Flags are handled by the config loader.
func commandArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			break
		}
		out = append(out, a)
	}
	return out
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx, commandArgs(os.Args[1:])); err != nil {
		log.Fatalf("%v", err)
	}
}
