package main

import (
	"log"
	"os"

	"projector/cmd"
	"projector/pkg/logging"

	"go.uber.org/zap"
)

func main() {
	logger, err := logging.Setup(os.Getenv("PROJECTOR_DEBUG") != "")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := cmd.Execute(logger); err != nil {
		logger.Fatal("projector failed", zap.Error(err))
	}
	logging.Sync(logger)
}
