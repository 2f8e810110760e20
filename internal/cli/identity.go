package cli

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hearthside/hangouts/internal/identity"
)

// NewIdentityCommand creates the identity command group.
func NewIdentityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the signing identity",
	}
	cmd.AddCommand(newIdentityInitCommand(rootOpts))
	cmd.AddCommand(newIdentityShowCommand(rootOpts))
	return cmd
}

func newIdentityInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a signing key and save it to the config file",
		Long: `Generate a fresh secp256k1 key and save it to the config file.

The derived address is the identity every record ownership check sees.
Refuses to overwrite an existing key.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if cfg.Identity.Key != "" {
				return WrapExitError(ExitCommandError, "identity key already configured", nil)
			}

			key, err := crypto.GenerateKey()
			if err != nil {
				return WrapExitError(ExitCommandError, "generate key", err)
			}
			cfg.Identity.Key = hex.EncodeToString(crypto.FromECDSA(key))

			if err := saveConfig(rootOpts.ConfigPath, cfg); err != nil {
				return WrapExitError(ExitCommandError, "save config", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), addressOf(key))
			return nil
		},
	}
}

func newIdentityShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the configured identity address",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if cfg.Identity.Key == "" {
				return WrapExitError(ExitCommandError, "no identity key configured", nil)
			}
			_, address, err := identity.ParseKey(cfg.Identity.Key)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse identity key", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), address)
			return nil
		},
	}
}

func addressOf(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

// saveConfig writes the config as YAML, key material included, with
// owner-only permissions.
func saveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
