package registry

import (
	"fmt"
	"sort"

	"github.com/penaltybox/officials-stats-service/internal/leagues/kijhl"
	"github.com/penaltybox/officials-stats-service/internal/leagues/whl"
	"github.com/penaltybox/officials-stats-service/pkg/contracts"
)

// Registry manages available league modules. Built once at startup; read-only
// afterwards, so it is shared across workers without locking.
type Registry struct {
	modules map[string]contracts.LeagueModule
}

// New creates a league registry with all supported leagues.
func New() *Registry {
	r := &Registry{
		modules: make(map[string]contracts.LeagueModule),
	}

	r.Register(kijhl.New())
	r.Register(whl.New())

	return r
}

// NewEmpty creates a registry with no modules; tests register fakes.
func NewEmpty() *Registry {
	return &Registry{modules: make(map[string]contracts.LeagueModule)}
}

// Register adds a league module to the registry.
func (r *Registry) Register(module contracts.LeagueModule) {
	r.modules[module.GetLeagueKey()] = module
}

// GetModule retrieves a league module by key.
func (r *Registry) GetModule(leagueKey string) (contracts.LeagueModule, error) {
	module, ok := r.modules[leagueKey]
	if !ok {
		return nil, fmt.Errorf("league module not found: %s", leagueKey)
	}
	return module, nil
}

// AllLeagueKeys returns all registered league keys, sorted for stable output.
func (r *Registry) AllLeagueKeys() []string {
	keys := make([]string, 0, len(r.modules))
	for key := range r.modules {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
