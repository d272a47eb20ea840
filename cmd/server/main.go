package main

import (
	"context"
	"log"

	"github.com/insuredesk/policykeeper/internal/server"
	"github.com/insuredesk/policykeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
