package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/denmor86/ya-minerpool/internal/app"
	"github.com/denmor86/ya-minerpool/internal/config"
	"github.com/denmor86/ya-minerpool/internal/logger"
)

func main() {
	// загрузка конфига
	config := config.NewConfig()
	// инициализация логгера
	if err := logger.Initialize(config.LogLevel); err != nil {
		panic(fmt.Sprintf("can't initialize logger: %s ", err.Error()))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, config, os.Stdin, os.Stdout); err != nil {
		logger.Error("client failed", "error", err.Error())
		logger.Sync()
		os.Exit(1)
	}
}
