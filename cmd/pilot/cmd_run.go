package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pcpilot/internal/ai"
)

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	input := strings.Join(args, " ")
	out := a.engine.ProcessCommand(ctx, input)
	printOutcome(out)

	if !out.Success {
		os.Exit(1)
	}
	return nil
}

func printOutcome(out ai.Outcome) {
	if out.Action == "chat" {
		fmt.Println(out.Message)
		return
	}

	marker := "ok"
	if !out.Success {
		marker = "failed"
	}
	fmt.Printf("[%s] %s\n", marker, out.Message)

	if out.Result != nil && len(out.Result.Data) > 0 {
		for k, v := range out.Result.Data {
			fmt.Printf("  %s: %v\n", k, v)
		}
	}
}
