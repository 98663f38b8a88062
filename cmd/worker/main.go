// Command worker runs only the research worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/interfaces/cli"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := cli.RunWorker(context.Background(), cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
