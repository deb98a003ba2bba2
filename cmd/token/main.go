// Command token mints a bearer token identifying a group member, signed with
// the server's JWT_SECRET.
//
//	token -id u1 -name Alice
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/pkg/logging"
)

func main() {
	memberID := flag.String("id", "", "member id")
	name := flag.String("name", "", "member display name (required)")
	flag.Parse()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET must be set to mint tokens")
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTDuration).Generate(*memberID, *name)
	if err != nil {
		slog.Error("Failed to mint token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
