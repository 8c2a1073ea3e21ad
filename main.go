package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/usercredential/internal/app"
)

const usage = `usage: usercredential <command> <username>

commands:
  enroll     create (or return) the TOTP token and print its provisioning URI
  unenroll   delete the TOTP token
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	command, username := args[0], args[1]

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	cfg, err := app.Load(path)
	if err != nil {
		slog.Error("failed to init config", "path", path, "error", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return 1
	}
	defer application.Stop(context.Background())

	switch command {
	case "enroll":
		enr, err := application.Tokens().CreateToken(ctx, username)
		if err != nil {
			slog.ErrorContext(ctx, "failed to enroll token", "username", username, "error", err)
			return 1
		}
		fmt.Println(enr.URI)
	case "unenroll":
		if err := application.Tokens().DeleteToken(ctx, username); err != nil {
			slog.ErrorContext(ctx, "failed to delete token", "username", username, "error", err)
			return 1
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	return 0
}
