package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/keyring"
	"github.com/julianstephens/wurkwurk/internal/storage/postgres"
)

// KeyringSetCmd stores a postgres connection string in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.CheckConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so a password is allowed here.
		fmt.Println(cli.WarnStyle.Render("⚠️  Connection string contains embedded credentials; storing it in the encrypted OS keyring."))
	}

	if err := keyring.Set(keyring.ConnectionString, cmd.ConnectionString); err != nil {
		return err
	}

	fmt.Println("✓ Connection string stored in OS keyring")
	fmt.Println("  wurkwurk will use it when --config is not given")
	return nil
}

// KeyringTokenCmd stores the bearer token sent with web app requests
type KeyringTokenCmd struct {
	Token string `arg:"" optional:"" help:"OAuth access token for the web app."`
	Clear bool   `help:"Remove the stored token instead."`
}

func (cmd *KeyringTokenCmd) Run(ctx *cli.Context) error {
	if cmd.Clear {
		if err := keyring.Delete(keyring.WebAppToken); err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return errors.New("no web app token found in keyring")
			}
			return err
		}
		fmt.Println("✓ Web app token removed from OS keyring")
		return nil
	}

	token := strings.TrimSpace(cmd.Token)
	if token == "" {
		return errors.New("token is required unless --clear is given")
	}
	if err := keyring.Set(keyring.WebAppToken, token); err != nil {
		return err
	}
	fmt.Printf("✓ Web app token %s stored in OS keyring\n", maskToken(token))
	return nil
}

// KeyringGetCmd prints the stored connection string with its password masked
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'wurkwurk keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	fmt.Println("Connection string retrieved from keyring:")
	fmt.Println(maskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes the stored connection string
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.Delete(keyring.ConnectionString); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}

	fmt.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd reports keyring availability and which secrets are stored
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println(cli.FailStyle.Render("❌ OS keyring is not available on this system"))
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println("✓ OS keyring is available")

	for _, s := range []struct {
		secret keyring.Secret
		label  string
	}{
		{keyring.ConnectionString, "Connection string"},
		{keyring.WebAppToken, "Web app token"},
	} {
		_, err := keyring.Get(s.secret)
		switch {
		case err == nil:
			fmt.Printf("✓ %s is stored\n", s.label)
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("ℹ No %s stored", strings.ToLower(s.label))))
		default:
			return err
		}
	}
	return nil
}

// maskPassword masks passwords in URL and DSN connection strings
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		remaining := connStr[idx+3:]
		// The last @ separates user info from host.
		if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
			userInfo := remaining[:atIdx]
			if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
				return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + remaining[atIdx:]
			}
		}
		return connStr
	}

	if !strings.Contains(connStr, "password=") {
		return connStr
	}
	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}

// maskToken keeps the first four characters of a token.
func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}
