// Команда token выпускает JWT для локальной разработки и ручных запросов к API.
package main

import (
	"DonationHub/internal/middleware"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type tokenConfig struct {
	Secret string `env:"AUTH_SECRET" envDefault:"dev-secret-key"`
}

func main() {
	_ = godotenv.Load()

	cfg := tokenConfig{}
	_ = env.Parse(&cfg)

	email := flag.String("email", "", "email пользователя (claim sub)")
	ttl := flag.Duration("ttl", 24*time.Hour, "срок жизни токена")
	flag.StringVar(&cfg.Secret, "auth-secret", cfg.Secret, "секрет подписи JWT")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: token -email user@example.com [-ttl 24h]")
		os.Exit(2)
	}

	tok, err := middleware.BuildJWTString(*email, cfg.Secret, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
