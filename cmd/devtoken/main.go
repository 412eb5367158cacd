// Command devtoken mints a session token for calling the API locally.
//
//	go run ./cmd/devtoken -sub user-1 -email dev@example.com
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"ingest-backend/internal/shared/auth"
	"ingest-backend/internal/shared/config"
)

func main() {
	sub := flag.String("sub", "dev-user", "subject (user id)")
	email := flag.String("email", "", "email claim")
	name := flag.String("name", "", "name claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	now := time.Now().UTC()
	token, err := auth.SignJWT(auth.SecretBytes(cfg.SessionSecret), auth.Claims{
		Sub:   *sub,
		Email: *email,
		Name:  *name,
		Iat:   now.Unix(),
		Exp:   now.Add(*ttl).Unix(),
	})
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
