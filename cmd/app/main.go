package main

import (
	"rentgear/config"
	"rentgear/di"
	"rentgear/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
