package main

import (
	"context"
	"os"

	"civiclink/pkg/config"
	"civiclink/pkg/log"
)

const defaultConfigFilename = "config.yaml"

func main() {
	ctx := context.Background()

	configFilename := defaultConfigFilename
	if len(os.Args) > 1 {
		configFilename = os.Args[1]
	}

	cfg, err := config.ReadConfig(configFilename)
	if err != nil {
		panic(err)
	}

	initializeLogger(ctx, cfg)
	defer log.Logger().Close()

	flush := initializeSentry(cfg)
	defer flush()

	repo := initializeRepository(ctx, cfg)
	defer repo.Close()

	s := &server{
		cfg:  cfg,
		repo: repo,
	}

	s.start(ctx)
}
