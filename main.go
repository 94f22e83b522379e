// main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/cmd"
)

// Exit codes: 0 all cases passed, 1 cases failed, 2 setup or report error,
// 130 interrupted.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, cmd.ErrCasesFailed):
		return 1
	default:
		return 2
	}
}
