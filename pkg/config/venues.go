package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// VenueSpec describes one V3 venue's deployment parameters. Deployer may be
// empty when the factory itself deploys pools (Uniswap); PancakeSwap-style
// deployments separate the two.
type VenueSpec struct {
	Name         string `toml:"name"`
	Factory      string `toml:"factory"`
	Deployer     string `toml:"deployer"`
	InitCodeHash string `toml:"init_code_hash"`
}

type venuesFile struct {
	Venues []VenueSpec `toml:"venues"`
}

// DefaultVenues returns the built-in Arbitrum Sepolia venue set.
func DefaultVenues() []VenueSpec {
	return []VenueSpec{
		{
			Name:         "uniswap",
			Factory:      "0xBA5973D0D236F7f03A8C3bd262375C2795F2c7B4",
			InitCodeHash: "0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54",
		},
		{
			Name:         "pancakeswap",
			Factory:      "0x02a84c1b3BBD7401a5f7fa98a384EBC70bB5749E",
			InitCodeHash: "0x6ce8eb472fa82df5469c6ab680e1dc133bf2a31de6e30bd4f2bfdc77ec7cc5bc",
		},
	}
}

// LoadVenues returns the venue set: the TOML file at path when given,
// otherwise the built-in defaults.
func LoadVenues(path string) ([]VenueSpec, error) {
	if path == "" {
		return DefaultVenues(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venues file: %w", err)
	}

	var file venuesFile
	err = toml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("parse venues file: %w", err)
	}

	if len(file.Venues) < 2 {
		return nil, fmt.Errorf("venues file must define at least two venues, got %d", len(file.Venues))
	}

	for _, v := range file.Venues {
		if v.Name == "" {
			return nil, fmt.Errorf("venue with empty name in %s", path)
		}
		if !common.IsHexAddress(v.Factory) {
			return nil, fmt.Errorf("venue %s: factory is not a hex address: %q", v.Name, v.Factory)
		}
		if v.Deployer != "" && !common.IsHexAddress(v.Deployer) {
			return nil, fmt.Errorf("venue %s: deployer is not a hex address: %q", v.Name, v.Deployer)
		}
	}

	return file.Venues, nil
}
