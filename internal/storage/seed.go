package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TransportSeed is the YAML document used to populate an empty transport store.
//
//	transports:
//	  - host: sandbox.smtp.mailtrap.io
//	    port: 2525
//	    from_address: no-reply@example.com
//	    username: user
//	    password: secret
//	    auth_enabled: true
//	    secure_transport_enabled: true
//	    is_active: true
type TransportSeed struct {
	Transports []TransportConfig `yaml:"transports"`
}

// LoadTransportSeed reads and decodes a seed file. More than one active entry
// is rejected because the store would keep only the last one active.
func LoadTransportSeed(path string) (*TransportSeed, error) {
	//nolint:gosec // path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transport seed %q: %w", path, err)
	}

	var seed TransportSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing transport seed %q: %w", path, err)
	}

	active := 0
	for _, t := range seed.Transports {
		if t.IsActive {
			active++
		}
	}
	if active > 1 {
		return nil, fmt.Errorf("transport seed %q: %d entries marked active, at most one allowed", path, active)
	}
	return &seed, nil
}

// SeedTransports inserts the seed entries when the store holds no
// configuration yet. It returns the number of inserted records. A missing
// seed file is not an error.
func SeedTransports(ctx context.Context, store TransportStore, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	n, err := store.CountTransports(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	seed, err := LoadTransportSeed(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	for i := range seed.Transports {
		cfg := seed.Transports[i]
		if err := store.CreateTransport(ctx, &cfg); err != nil {
			return i, fmt.Errorf("seeding transport %s:%d: %w", cfg.Host, cfg.Port, err)
		}
	}
	return len(seed.Transports), nil
}
