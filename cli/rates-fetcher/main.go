package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/malusev998/currency-rates/cli/cmd"
	"github.com/malusev998/currency-rates/handler"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cmd.Execute(&cmd.Config{
		Ctx:      ctx,
		Handler:  handler.New(),
		EnvFiles: []string{".env"},
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
