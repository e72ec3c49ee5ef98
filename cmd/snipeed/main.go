package main

import (
	"context"
	"log"
	"os"

	"github.com/tetete478/Snipee-sub000/internal/agent"
	"github.com/tetete478/Snipee-sub000/internal/buildinfo"
	"github.com/tetete478/Snipee-sub000/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := agent.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
