package cli

import (
	"github.com/spf13/cobra"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/club"
	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/schema"
	"github.com/hearthside/hangouts/internal/store"
)

// Env wires one command invocation: config, logger, compiled registry,
// store, client, and (when an identity key is configured) a signing
// session.
type Env struct {
	Config  *Config
	Store   *store.Store
	Client  *club.Client
	Session *club.Session
	Out     *OutputFormatter
}

// newEnv builds the environment for a command. With needIdentity set,
// a missing identity key is an immediate command error instead of a
// denial from the store later.
func newEnv(opts *RootOptions, cmd *cobra.Command, needIdentity bool) (*Env, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	logger := newLogger(cfg, opts.Verbose)

	registry, err := schema.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "compile schema", err)
	}

	st, err := store.Open(cfg.Store, registry, store.WithLogger(logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}

	env := &Env{
		Config: cfg,
		Store:  st,
		Client: club.NewClient(club.Direct{Store: st}, club.WithLogger(logger)),
		Out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}

	if cfg.Identity.Key != "" {
		wallet := identity.NewMemoryWallet()
		address, err := wallet.Import(cfg.Identity.Key)
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "import identity key", err)
		}
		authn := auth.NewAuthenticator(wallet)
		if _, err := authn.Attach(env.Client, address); err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "attach signer", err)
		}
		session, err := env.Client.Session()
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "open session", err)
		}
		env.Session = session
		env.Out.VerboseLog("identity: %s", address)
	} else if needIdentity {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "no identity key configured", nil)
	}

	return env, nil
}

// Close releases the environment's store.
func (e *Env) Close() error {
	return e.Store.Close()
}
