package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry holds the configured OCR engines by name and provides
// thread-safe access. It is rebuilt from config on hot reload.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	configs map[string]Config
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Engine),
		configs: make(map[string]Config),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds or replaces an engine by name.
func (r *Registry) Register(name string, e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[name] = e
	delete(r.configs, name)
	if r.logger != nil {
		r.logger.Debug("registered OCR engine", "name", name, "engine", e.Name())
	}
}

// Unregister removes an engine by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, name)
	delete(r.configs, name)
}

// Get returns an engine by name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, nil
}

// Has reports whether an engine is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.engines[name]
	return ok
}

// List returns the registered engine names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Factory builds an engine of a registered type from its config.
type Factory func(Config) (Engine, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterType makes an engine type available to config-built registries.
// Engines with cgo dependencies register from their own packages so that
// importing this package never requires cgo. Registering a built-in type
// name has no effect.
func RegisterType(typ string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[typ] = f
}

// Types returns the built-in and registered engine types, sorted.
func Types() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	types := []string{"documentai", "mock", "tesseract"}
	for typ := range factories {
		switch typ {
		case "documentai", "mock", "tesseract":
		default:
			types = append(types, typ)
		}
	}
	sort.Strings(types)
	return types
}

func lookupType(typ string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[typ]
	return f, ok
}

// Config describes one engine to instantiate. It mirrors the engines
// section of the config file with credentials already resolved.
type Config struct {
	Type        string // "tesseract", "gosseract", "documentai", "mock"
	Binary      string // tesseract executable
	TessdataDir string
	RateLimit   int // requests per minute; 0 disables limiting

	ProjectID       string
	Location        string
	ProcessorID     string
	CredentialsFile string

	Enabled bool
}

// NewRegistryFromConfig creates a registry with every enabled engine.
func NewRegistryFromConfig(cfgs map[string]Config, logger *slog.Logger) *Registry {
	r := NewRegistry()
	if logger != nil {
		r.logger = logger
	}
	r.Reload(cfgs)
	return r
}

// Reload brings the registry in line with cfgs: new engines are created,
// changed ones rebuilt and removed ones dropped. Engines registered
// directly with Register are left alone.
func (r *Registry) Reload(cfgs map[string]Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		if prev, ok := r.configs[name]; ok && prev == cfg {
			continue
		}
		e, err := newEngine(cfg)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("skipping OCR engine", "name", name, "error", err)
			}
			continue
		}
		_, existed := r.engines[name]
		r.engines[name] = e
		r.configs[name] = cfg
		if r.logger != nil {
			if existed {
				r.logger.Info("updated OCR engine", "name", name, "type", cfg.Type)
			} else {
				r.logger.Debug("registered OCR engine", "name", name, "type", cfg.Type)
			}
		}
	}

	for name := range r.configs {
		if cfg, ok := cfgs[name]; !ok || !cfg.Enabled {
			delete(r.engines, name)
			delete(r.configs, name)
			if r.logger != nil {
				r.logger.Info("unregistered OCR engine", "name", name)
			}
		}
	}
}

func newEngine(cfg Config) (Engine, error) {
	var e Engine
	switch cfg.Type {
	case "tesseract":
		e = NewTesseract(TesseractConfig{Binary: cfg.Binary, TessdataDir: cfg.TessdataDir})
	case "documentai":
		if cfg.ProjectID == "" || cfg.ProcessorID == "" {
			return nil, fmt.Errorf("documentai requires project_id and processor_id")
		}
		e = NewDocumentAI(DocumentAIConfig{
			ProjectID:       cfg.ProjectID,
			Location:        cfg.Location,
			ProcessorID:     cfg.ProcessorID,
			CredentialsFile: cfg.CredentialsFile,
		})
	case "mock":
		e = &MockEngine{Latency: 10 * time.Millisecond}
	default:
		f, ok := lookupType(cfg.Type)
		if !ok {
			return nil, fmt.Errorf("unknown engine type %q", cfg.Type)
		}
		var err error
		if e, err = f(cfg); err != nil {
			return nil, fmt.Errorf("failed to create %s engine: %w", cfg.Type, err)
		}
	}
	if cfg.RateLimit > 0 {
		e = WithRateLimit(e, cfg.RateLimit)
	}
	return e, nil
}
