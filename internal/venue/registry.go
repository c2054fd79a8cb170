package venue

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Venue is one decentralized-exchange deployment queried for pricing.
// Immutable once registered.
type Venue struct {
	Name string
	// Factory is the venue's pool factory contract.
	Factory common.Address
	// Deployer is the CREATE2 deployer used in pool address derivation.
	// Uniswap deploys pools from the factory itself; PancakeSwap uses a
	// separate pool-deployer contract.
	Deployer common.Address
	// InitCodeHash is the venue's pool init code hash.
	InitCodeHash common.Hash
}

// Config describes one venue for registration.
type Config struct {
	Name         string
	Factory      string
	Deployer     string // optional, defaults to Factory
	InitCodeHash string
}

// Registry holds the immutable venue set configured at startup.
type Registry struct {
	venues map[string]Venue
	names  []string
}

// NewRegistry builds a registry from venue configs. At least two venues are
// required: a single venue can never produce a spread.
func NewRegistry(configs []Config) (*Registry, error) {
	if len(configs) < 2 {
		return nil, fmt.Errorf("at least two venues required, got %d", len(configs))
	}

	venues := make(map[string]Venue, len(configs))
	names := make([]string, 0, len(configs))

	for _, cfg := range configs {
		if cfg.Name == "" {
			return nil, fmt.Errorf("venue with empty name")
		}

		if _, dup := venues[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate venue %q", cfg.Name)
		}

		if !common.IsHexAddress(cfg.Factory) {
			return nil, fmt.Errorf("venue %s: invalid factory address %q", cfg.Name, cfg.Factory)
		}

		factory := common.HexToAddress(cfg.Factory)
		if factory == (common.Address{}) {
			return nil, fmt.Errorf("venue %s: zero factory address", cfg.Name)
		}

		deployer := factory
		if cfg.Deployer != "" {
			if !common.IsHexAddress(cfg.Deployer) {
				return nil, fmt.Errorf("venue %s: invalid deployer address %q", cfg.Name, cfg.Deployer)
			}
			deployer = common.HexToAddress(cfg.Deployer)
		}

		hash := common.HexToHash(cfg.InitCodeHash)
		if hash == (common.Hash{}) {
			return nil, fmt.Errorf("venue %s: missing init code hash", cfg.Name)
		}

		venues[cfg.Name] = Venue{
			Name:         cfg.Name,
			Factory:      factory,
			Deployer:     deployer,
			InitCodeHash: hash,
		}
		names = append(names, cfg.Name)
	}

	sort.Strings(names)

	return &Registry{venues: venues, names: names}, nil
}

// Get returns the venue registered under name.
func (r *Registry) Get(name string) (Venue, bool) {
	v, ok := r.venues[name]
	return v, ok
}

// All returns the registered venues in deterministic name order.
func (r *Registry) All() []Venue {
	out := make([]Venue, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.venues[name])
	}
	return out
}

// Names returns the registered venue names in deterministic order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
