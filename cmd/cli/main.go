package main

import (
	"context"
	"os"

	"github.com/insuredesk/policykeeper/internal/buildinfo"
	"github.com/insuredesk/policykeeper/internal/client/cli"
	"github.com/insuredesk/policykeeper/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
