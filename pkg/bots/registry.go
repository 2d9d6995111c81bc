// Package bots defines the bot contract and the registry the station
// dispatches through. A bot is a self-contained scraping task with a
// static manifest and a single Run entry point taking positional string
// parameters.
package bots

import (
	"context"
	"fmt"
	"sort"

	"scraper-station/pkg/utils"
)

// Manifest describes a bot for listings and run history
type Manifest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Version     string   `json:"version"`
	Operations  []string `json:"operations,omitempty"`
}

// Bot is a runnable scraping task. Run receives positional parameters as
// strings; each bot coerces them itself and returns a JSON-serializable
// result.
type Bot interface {
	Manifest() Manifest
	Run(ctx context.Context, params []string) (any, error)
}

// Registry holds the station's bots keyed by manifest name. Registration
// happens once at startup; lookups afterwards are read-only, so no locking.
type Registry struct {
	bots map[string]Bot
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{bots: make(map[string]Bot)}
}

// Register adds a bot under its manifest name, replacing any previous
// bot with the same name.
func (r *Registry) Register(b Bot) {
	r.bots[b.Manifest().Name] = b
}

// Get returns the bot registered under name
func (r *Registry) Get(name string) (Bot, error) {
	b, ok := r.bots[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", utils.ErrBotNotFound, name)
	}
	return b, nil
}

// List returns all registered manifests sorted by name
func (r *Registry) List() []Manifest {
	manifests := make([]Manifest, 0, len(r.bots))
	for _, b := range r.bots {
		manifests = append(manifests, b.Manifest())
	}
	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Name < manifests[j].Name })
	return manifests
}
