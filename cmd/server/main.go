// Command server runs the quizdeck HTTP API.
//
// It serves until SIGINT or SIGTERM, then shuts down gracefully.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/medrecall/quizdeck-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
