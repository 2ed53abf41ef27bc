package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"

	"github.com/yungbote/bytesolver-backend/internal/app"
)

const shutdownTimeout = 15 * time.Second

func main() {
	printStartUpBanner()

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Failed to read .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			a.Log.Error("Server exited", "error", err)
		}
	case <-ctx.Done():
		a.Log.Info("Shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Shutdown(sctx); err != nil {
			a.Log.Warn("Graceful shutdown failed", "error", err)
		}
	}
}

func printStartUpBanner() {
	figure.NewFigure("BYTE SOLVER", "", true).Print()
	fmt.Println("======================================================")
	fmt.Println("AI Byte Solver API")
	fmt.Println()
}
