package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if msg, err := a.engine.Initialize(ctx); err != nil {
		fmt.Println(a.engine.StartupMessage(ctx))
		fmt.Println(msg)
	} else {
		fmt.Println(a.engine.StartupMessage(ctx))
	}
	fmt.Println(`Type a command ("open firefox", "volume up") or "exit" to quit.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		if ctx.Err() != nil {
			break
		}

		out := a.engine.ProcessCommand(ctx, input)
		printOutcome(out)
	}

	return scanner.Err()
}
