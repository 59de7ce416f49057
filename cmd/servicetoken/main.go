// Command servicetoken prints a bearer token for the /jobs endpoints, signed
// with SERVICE_ROLE_SECRET. External schedulers send it as
// "Authorization: Bearer <token>".
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	config "github.com/maheshrc27/instaflow/configs"
	"github.com/maheshrc27/instaflow/pkg/utils"
)

var errMissingSecret = errors.New("SERVICE_ROLE_SECRET is not set")

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if err := run(os.Args[1:], cfg.ServiceRoleSecret, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, secret string, out io.Writer) error {
	fs := flag.NewFlagSet("servicetoken", flag.ContinueOnError)
	ttl := fs.Duration("ttl", 365*24*time.Hour, "how long the token stays valid")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if secret == "" {
		return errMissingSecret
	}
	if *ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", *ttl)
	}

	token, err := utils.GenerateServiceToken(secret, *ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
