package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("startup failed: %v", err)
		if errors.Is(err, common.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
