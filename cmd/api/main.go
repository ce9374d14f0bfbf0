package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"footix-auth-service/cmd/api/app"
	"footix-auth-service/cmd/api/server"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	if err := a.Run(ctx); err != nil {
		a.Logger.Fatal("application exited with error", zap.Error(err))
	}
}
