package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-service/auth"
)

var (
	tokenEmail string
	tokenAdmin bool
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development token signed with the shared secret",
	Long: `Mint an HS256 bearer token for local testing.

The secret is LIBRARY_JWT_SECRET; when it is unset you are prompted for it.

Examples:
  library-service token --email reader@example.com
  library-service token --email admin@example.com --admin --ttl 1h`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "user email (token subject)")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "issue an admin token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	tokenCmd.MarkFlagRequired("email")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if secret, err = readSecret("JWT signing secret: "); err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
	}

	role := auth.RoleUser
	if tokenAdmin {
		role = auth.RoleAdmin
	}
	claims := auth.NewClaims(tokenEmail, role, cfg.JWTIssuer, tokenTTL)
	if cfg.JWTAudience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.JWTAudience}
	}

	raw, err := auth.Sign([]byte(secret), claims)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), raw)
	return nil
}

// readSecret reads a secret from the terminal with echo disabled.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; set LIBRARY_JWT_SECRET")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
