// Package vault loads runtime secrets (database password, JWT secret,
// admin credentials) from HashiCorp Vault, with a disabled mode that
// falls back to configuration values for development.
package vault

import (
	"context"
	"fmt"
	"sync"

	"property-backoffice/config"

	"github.com/hashicorp/vault/api"
)

// AppSecrets holds the secrets the service reads at startup.
type AppSecrets struct {
	DatabasePassword string `json:"database_password"`
	JWTSecret        string `json:"jwt_secret"`
	AdminEmail       string `json:"admin_email"`
	AdminPassword    string `json:"admin_password"`
}

// Client wraps the HashiCorp Vault client
type Client struct {
	client *api.Client
	config config.VaultConfig

	mu     sync.RWMutex
	cached *AppSecrets
}

// NewClient creates a new Vault client. When Vault is disabled in the
// configuration the client operates in passthrough mode and LoadSecrets
// returns empty secrets for the caller to fill from config.
func NewClient(cfg config.VaultConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{config: cfg}, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSEnabled && cfg.CACert != "" {
		tlsConfig := &api.TLSConfig{
			CACert: cfg.CACert,
		}
		if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(cfg.Token)

	return &Client{
		client: client,
		config: cfg,
	}, nil
}

// IsEnabled returns whether Vault integration is active.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// LoadSecrets reads the application secrets from the configured KV v2
// path. Results are cached for the process lifetime.
func (c *Client) LoadSecrets(ctx context.Context) (*AppSecrets, error) {
	if !c.config.Enabled {
		return &AppSecrets{}, nil
	}

	c.mu.RLock()
	if c.cached != nil {
		defer c.mu.RUnlock()
		return c.cached, nil
	}
	c.mu.RUnlock()

	secret, err := c.client.KVv2(c.config.MountPath).Get(ctx, c.config.SecretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secrets found at %s/%s", c.config.MountPath, c.config.SecretPath)
	}

	secrets := &AppSecrets{
		DatabasePassword: getString(secret.Data, "database_password"),
		JWTSecret:        getString(secret.Data, "jwt_secret"),
		AdminEmail:       getString(secret.Data, "admin_email"),
		AdminPassword:    getString(secret.Data, "admin_password"),
	}

	c.mu.Lock()
	c.cached = secrets
	c.mu.Unlock()

	return secrets, nil
}

// StoreSecrets writes the application secrets to Vault. Used by the
// bootstrap tooling, not the running service.
func (c *Client) StoreSecrets(ctx context.Context, secrets AppSecrets) error {
	if !c.config.Enabled {
		return fmt.Errorf("vault is not enabled")
	}

	data := map[string]interface{}{
		"database_password": secrets.DatabasePassword,
		"jwt_secret":        secrets.JWTSecret,
		"admin_email":       secrets.AdminEmail,
		"admin_password":    secrets.AdminPassword,
	}

	if _, err := c.client.KVv2(c.config.MountPath).Put(ctx, c.config.SecretPath, data); err != nil {
		return fmt.Errorf("failed to write secrets to vault: %w", err)
	}

	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()

	return nil
}

// Health checks Vault connectivity.
func (c *Client) Health(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
