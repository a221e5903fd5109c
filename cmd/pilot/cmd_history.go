package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func showHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if a.store == nil {
		return fmt.Errorf("command history is disabled (no history_path configured)")
	}

	records, err := a.store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No commands recorded yet.")
		return nil
	}

	for _, rec := range records {
		marker := "ok"
		if !rec.Success {
			marker = "failed"
		}
		fmt.Printf("%s  [%s] %-18s %s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			marker, rec.Action, rec.Input)
	}
	return nil
}
