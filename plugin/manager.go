// Package plugin implements plugin registration and lifecycle: dependency
// resolution, config-schema validation, route-prefix hand-off, and
// lifecycle hook emission.
package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coapkit/coapkit/hooks"
)

// ErrDependencyCycle is returned when Enable discovers a cyclic
// dependency graph while resolving a plugin's dependencies.
var ErrDependencyCycle = errors.New("plugin: dependency cycle detected")

// ErrNotRegistered is returned when a referenced plugin (by name, or as a
// dependency) was never registered.
var ErrNotRegistered = errors.New("plugin: not registered")

// ErrVersionTooOld is returned when the framework version is below a
// plugin's Requires constraint, or a dependency is below its required
// version.
var ErrVersionTooOld = errors.New("plugin: framework or dependency version too old")

// ApplyFunc is the plugin body: given the running app (an opaque
// interface{} since plugin must not import the app package, avoiding a
// cycle) and validated options, wire up whatever the plugin does.
type ApplyFunc func(app interface{}, options map[string]interface{}) error

// Plugin is one registered module.
type Plugin struct {
	Name         string
	Version      string
	Requires     string   // minimum framework version, empty skips the check
	Dependencies []string // names of other registered plugins
	RoutePrefix  string
	ConfigSchema ConfigSchema

	BeforeApply ApplyFunc
	Apply       ApplyFunc
	AfterApply  ApplyFunc
}

// Manager registers plugins and drives their enable/disable lifecycle.
type Manager struct {
	mu               sync.Mutex
	frameworkVersion string
	plugins          map[string]*Plugin
	enabled          map[string]bool
	emitter          *hooks.Emitter
}

// New returns a Manager for the given framework version. emitter may be
// nil, in which case lifecycle events are not published.
func New(frameworkVersion string, emitter *hooks.Emitter) *Manager {
	return &Manager{
		frameworkVersion: frameworkVersion,
		plugins:          make(map[string]*Plugin),
		enabled:          make(map[string]bool),
		emitter:          emitter,
	}
}

// Register adds p to the registry. Re-registering the same name replaces
// the previous definition as long as it isn't currently enabled.
func (m *Manager) Register(p *Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled[p.Name] {
		return fmt.Errorf("plugin %q: cannot re-register while enabled", p.Name)
	}
	m.plugins[p.Name] = p
	return nil
}

// Enabled reports whether name is currently enabled.
func (m *Manager) Enabled(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled[name]
}

func (m *Manager) emit(event, name string, extra map[string]interface{}) {
	if m.emitter == nil {
		return
	}
	payload := map[string]interface{}{"plugin": name}
	for k, v := range extra {
		payload[k] = v
	}
	m.emitter.Emit(event, payload)
}

// Enable runs the enable lifecycle for name: version check, recursive
// dependency resolution, option validation, and before/apply/after hooks,
// emitting plugin_enabling and plugin_enabled (or plugin_error on
// failure). A non-empty RoutePrefix is passed to the stages as the
// "route_prefix" option; routes the plugin registers are not prefixed
// automatically.
func (m *Manager) Enable(name string, app interface{}, options map[string]interface{}) error {
	return m.enable(name, app, options, make(map[string]bool))
}

func (m *Manager) enable(name string, app interface{}, options map[string]interface{}, visiting map[string]bool) error {
	if visiting[name] {
		return ErrDependencyCycle
	}
	visiting[name] = true

	m.mu.Lock()
	p, ok := m.plugins[name]
	alreadyEnabled := m.enabled[name]
	m.mu.Unlock()
	if !ok {
		err := fmt.Errorf("%w: %q", ErrNotRegistered, name)
		m.emit(hooks.PluginError, name, map[string]interface{}{"error": err.Error()})
		return err
	}
	if alreadyEnabled {
		return nil
	}

	if p.Requires != "" && !versionAtLeast(m.frameworkVersion, p.Requires) {
		err := fmt.Errorf("%w: plugin %q requires framework >= %s, running %s", ErrVersionTooOld, name, p.Requires, m.frameworkVersion)
		m.emit(hooks.PluginError, name, map[string]interface{}{"error": err.Error()})
		return err
	}

	for _, dep := range p.Dependencies {
		if err := m.enable(dep, app, nil, visiting); err != nil {
			err = fmt.Errorf("plugin %q: dependency %q: %w", name, dep, err)
			m.emit(hooks.PluginError, name, map[string]interface{}{"error": err.Error()})
			return err
		}
	}

	effective, err := ValidateOptions(name, p.ConfigSchema, options)
	if err != nil {
		m.emit(hooks.PluginError, name, map[string]interface{}{"error": err.Error()})
		return err
	}

	if p.RoutePrefix != "" {
		effective["route_prefix"] = p.RoutePrefix
	}

	m.emit(hooks.PluginEnabling, name, nil)

	if err := runStage(p.BeforeApply, app, effective); err != nil {
		m.emit(hooks.PluginError, name, map[string]interface{}{"error": err.Error(), "stage": "before_apply"})
		return err
	}
	if err := runStage(p.Apply, app, effective); err != nil {
		m.emit(hooks.PluginError, name, map[string]interface{}{"error": err.Error(), "stage": "apply"})
		return err
	}
	if err := runStage(p.AfterApply, app, effective); err != nil {
		m.emit(hooks.PluginError, name, map[string]interface{}{"error": err.Error(), "stage": "after_apply"})
		return err
	}

	m.mu.Lock()
	m.enabled[name] = true
	m.mu.Unlock()
	m.emit(hooks.PluginEnabled, name, nil)
	return nil
}

func runStage(fn ApplyFunc, app interface{}, options map[string]interface{}) error {
	if fn == nil {
		return nil
	}
	return fn(app, options)
}

// Disable marks name as no longer enabled and emits plugin_disabled. It
// does not recursively disable dependents.
func (m *Manager) Disable(name string) error {
	m.mu.Lock()
	if !m.enabled[name] {
		m.mu.Unlock()
		return nil
	}
	m.enabled[name] = false
	m.mu.Unlock()
	m.emit(hooks.PluginDisabled, name, nil)
	return nil
}
