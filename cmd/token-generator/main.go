// Package main implements a small operator tool that mints an access token
// for a learner. Token issuance is not exposed over the API, so this is how
// clients obtain credentials during development and testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/config"
	"github.com/revisehq/revise-api/internal/service/auth"
)

func main() {
	learnerFlag := flag.String("learner", "",
		"learner UUID to mint a token for (a random one is generated when omitted)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	learnerID := uuid.New()
	if *learnerFlag != "" {
		learnerID, err = uuid.Parse(*learnerFlag)
		if err != nil {
			log.Fatalf("Invalid learner ID %q: %v", *learnerFlag, err)
		}
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to create JWT service: %v", err)
	}

	token, err := jwtService.GenerateToken(context.Background(), learnerID)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Printf("learner: %s\ntoken: %s\n", learnerID, token)
}
