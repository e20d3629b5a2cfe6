// Command issue-token prints a bearer token for a clinic operator, signed
// with the server's configured secret.
//
//	CLINIC_AUTH_JWT_SECRET=... issue-token -operator front-desk
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/phrazzld/clinicdesk/internal/config"
	"github.com/phrazzld/clinicdesk/internal/service/auth"
)

func main() {
	operator := flag.String("operator", "", "name of the operator the token is issued to")
	lifetime := flag.Duration("lifetime", 0, "token lifetime, defaults to auth.token_lifetime")
	flag.Parse()

	if err := run(*operator, *lifetime); err != nil {
		fmt.Fprintf(os.Stderr, "issue-token: %v\n", err)
		os.Exit(1)
	}
}

func run(operator string, lifetime time.Duration) error {
	if operator == "" {
		return errors.New("-operator is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	authCfg := cfg.Auth
	if lifetime > 0 {
		authCfg.TokenLifetime = lifetime
	}

	svc, err := auth.NewJWTService(authCfg)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(context.Background(), operator)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
