// Package registry holds the known-address tables the engine consults:
// DeFi protocol contracts and liquidity locker contracts. Entries come
// from an embedded default set, a JSON file, or Postgres.
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"ethyr-engine/internal/domain"
)

//go:embed defaults.json
var defaultsJSON []byte

// registryFile is the on-disk and embedded JSON shape.
type registryFile struct {
	Protocols map[string]string `json:"protocols"`
	Lockers   map[string]string `json:"lockers"`
}

// Registry is an immutable address -> label lookup. Keys are lowercased
// on load so lookups are case-insensitive.
type Registry struct {
	protocols map[string]string
	lockers   map[string]string
}

// New builds a Registry from label maps. Keys may be any casing.
func New(protocols, lockers map[string]string) *Registry {
	r := &Registry{
		protocols: make(map[string]string, len(protocols)),
		lockers:   make(map[string]string, len(lockers)),
	}
	for addr, label := range protocols {
		r.protocols[domain.AddressKey(addr)] = label
	}
	for addr, label := range lockers {
		r.lockers[domain.AddressKey(addr)] = label
	}
	return r
}

// Default returns the registry built from the embedded defaults.
func Default() *Registry {
	r, err := loadBytes(defaultsJSON)
	if err != nil {
		// Embedded data is validated by tests
		panic(fmt.Sprintf("registry: embedded defaults: %v", err))
	}
	return r
}

// LoadFile reads a registry from a JSON file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	r, err := loadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("registry file %s: %w", path, err)
	}
	return r, nil
}

func loadBytes(data []byte) (*Registry, error) {
	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}
	return New(file.Protocols, file.Lockers), nil
}

// ProtocolLabel returns the label for a known protocol address.
func (r *Registry) ProtocolLabel(addr string) (string, bool) {
	label, ok := r.protocols[domain.AddressKey(addr)]
	return label, ok
}

// IsProtocol reports whether addr is a known protocol contract.
func (r *Registry) IsProtocol(addr string) bool {
	_, ok := r.protocols[domain.AddressKey(addr)]
	return ok
}

// IsLocker reports whether addr is a known liquidity locker contract.
func (r *Registry) IsLocker(addr string) bool {
	_, ok := r.lockers[domain.AddressKey(addr)]
	return ok
}

// ProtocolCount returns the number of known protocol contracts.
func (r *Registry) ProtocolCount() int {
	return len(r.protocols)
}

// LockerCount returns the number of known locker contracts.
func (r *Registry) LockerCount() int {
	return len(r.lockers)
}
