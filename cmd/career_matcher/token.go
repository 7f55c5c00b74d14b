package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/career-matcher/internal/config"
	"github.com/jonathan/career-matcher/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for API authentication",
	Long: `Generate a signed JWT for calling the API when the server runs with
JWT_SECRET set. The token must be minted with the same secret the server uses.`,
	RunE: runToken,
}

var tokenClientID string

func init() {
	tokenCmd.Flags().StringVar(&tokenClientID, "client-id", "", "Client UUID to embed in the token (random when omitted)")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	clientID := uuid.New()
	if tokenClientID != "" {
		parsed, err := uuid.Parse(tokenClientID)
		if err != nil {
			return fmt.Errorf("invalid client-id: %w", err)
		}
		clientID = parsed
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(clientID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Printf("Client ID:  %s\n", clientID)
	fmt.Printf("Expires in: %dh\n", jwtConfig.ExpirationHours)
	fmt.Printf("Token:      %s\n", token)

	return nil
}
