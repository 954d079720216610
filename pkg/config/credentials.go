package config

import (
	"os"

	"github.com/zalando/go-keyring"

	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/util"
)

// OS credential storage namespace for the inventory token.
const (
	keyringService  = "network_collector"
	keyringTokenKey = "netbox_token"
)

// Credentials resolves device credentials: environment variables win
// over the config file. Nothing here prompts; interactive prompting is
// the CLI's job when the result is still incomplete.
func (c *Config) Credentials() model.Credentials {
	creds := model.Credentials{
		Username: c.Devices.Username,
		Password: c.Devices.Password,
		Secret:   c.Devices.Secret,
	}
	if v := os.Getenv("NET_USERNAME"); v != "" {
		creds.Username = v
	}
	if v := os.Getenv("NET_PASSWORD"); v != "" {
		creds.Password = v
	}
	if v := os.Getenv("NET_SECRET"); v != "" {
		creds.Secret = v
	}
	return creds
}

// NetBoxToken resolves the inventory token: OS credential storage,
// then NETBOX_TOKEN, then the config file.
func (c *Config) NetBoxToken() string {
	if tok, err := keyring.Get(keyringService, keyringTokenKey); err == nil && tok != "" {
		util.Debug("inventory token resolved from system keyring")
		return tok
	}
	if tok := os.Getenv("NETBOX_TOKEN"); tok != "" {
		return tok
	}
	return c.NetBox.Token
}

// StoreNetBoxToken saves the token into OS credential storage.
func StoreNetBoxToken(token string) error {
	return keyring.Set(keyringService, keyringTokenKey, token)
}
