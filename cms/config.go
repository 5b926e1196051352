// Package cms exposes the color-management side of the bridge: opaque
// Config, Transform and Evaluator handles over the configuration engine in
// cms/ociocfg. Constructors return nil on failure and record the reason in
// the family's last-error slot (see LastError); queries return sentinel
// values and never fail loudly. Handles must not be used after Destroy.
package cms

import (
	"fmt"
	"os"

	"github.com/kovidgoyal/colorbridge/cms/ociocfg"
)

// EnvVar is the process-scoped environment designation consulted by
// CreateFromEnv. It names the configuration file to load when the caller
// gives no explicit path or builtin identifier.
const EnvVar = "OCIO"

// Config owns a loaded, immutable color-management definition. Identity is
// the pointer; there are no value semantics. Concurrent read-only queries
// are safe; Destroy must not race with any other use of the handle.
type Config struct {
	cfg *ociocfg.Config
}

// CreateFromFile loads a configuration from a file path. Returns nil and
// records a failure on an empty path, an unreadable file or a malformed
// definition.
func CreateFromFile(path string) *Config {
	lastError.Clear()
	if path == "" {
		lastError.Set(fmt.Errorf("%w: empty config path", ErrInvalidArgument))
		return nil
	}
	cfg, err := ociocfg.LoadFile(path)
	if err != nil {
		lastError.Set(fmt.Errorf("%w: %v", ErrLoad, err))
		return nil
	}
	return &Config{cfg: cfg}
}

// CreateFromEnv loads the configuration named by the OCIO environment
// variable. The designation is checked before any load is attempted.
func CreateFromEnv() *Config {
	lastError.Clear()
	path := os.Getenv(EnvVar)
	if path == "" {
		lastError.Set(fmt.Errorf("%w: %s environment variable is not set", ErrConfigMissing, EnvVar))
		return nil
	}
	cfg, err := ociocfg.LoadFile(path)
	if err != nil {
		lastError.Set(fmt.Errorf("%w: %v", ErrLoad, err))
		return nil
	}
	return &Config{cfg: cfg}
}

// CreateBuiltin loads one of the configurations compiled into the library,
// addressed by identifier (with or without the "ocio://" scheme prefix).
func CreateBuiltin(identifier string) *Config {
	lastError.Clear()
	if identifier == "" {
		lastError.Set(fmt.Errorf("%w: empty builtin config identifier", ErrInvalidArgument))
		return nil
	}
	cfg, err := ociocfg.Builtin(identifier)
	if err != nil {
		lastError.Set(fmt.Errorf("%w: %v", ErrLoad, err))
		return nil
	}
	return &Config{cfg: cfg}
}

// Destroy releases the configuration. Safe on a nil handle. The handle must
// not be used afterwards; Transforms resolved from it stay valid.
func (c *Config) Destroy() {
	if c == nil {
		return
	}
	c.cfg = nil
}

// NumColorSpaces returns the number of color spaces, or -1 on a nil handle.
func (c *Config) NumColorSpaces() int {
	if c == nil || c.cfg == nil {
		return -1
	}
	return c.cfg.NumColorSpaces()
}

// ColorSpaceName returns the color-space name at index i. Out-of-range
// indices and nil handles yield "" without recording an error; a simple
// lookup miss is not a failure.
func (c *Config) ColorSpaceName(i int) string {
	if c == nil || c.cfg == nil {
		return ""
	}
	return c.cfg.ColorSpaceNameByIndex(i)
}

// Role returns the color-space name the given role maps to, or "" when the
// role is undeclared. An empty result is indistinguishable from a declared
// but empty mapping; both read as absent.
func (c *Config) Role(role string) string {
	if c == nil || c.cfg == nil || role == "" {
		return ""
	}
	return c.cfg.Role(role)
}

// NumDisplays returns the number of displays, or -1 on a nil handle.
func (c *Config) NumDisplays() int {
	if c == nil || c.cfg == nil {
		return -1
	}
	return c.cfg.NumDisplays()
}

// Display returns the display name at index i, or "" when out of range.
func (c *Config) Display(i int) string {
	if c == nil || c.cfg == nil {
		return ""
	}
	return c.cfg.DisplayNameByIndex(i)
}

// DefaultDisplay returns the configured default display, or "".
func (c *Config) DefaultDisplay() string {
	if c == nil || c.cfg == nil {
		return ""
	}
	return c.cfg.DefaultDisplay()
}

// NumViews returns the number of views of a display, or -1 on a nil handle
// or unknown display.
func (c *Config) NumViews(display string) int {
	if c == nil || c.cfg == nil || display == "" {
		return -1
	}
	return c.cfg.NumViews(display)
}

// View returns a display's view name at index i, or "".
func (c *Config) View(display string, i int) string {
	if c == nil || c.cfg == nil || display == "" {
		return ""
	}
	return c.cfg.ViewNameByIndex(display, i)
}

// DefaultView returns a display's default view name, or "".
func (c *Config) DefaultView(display string) string {
	if c == nil || c.cfg == nil || display == "" {
		return ""
	}
	return c.cfg.DefaultView(display)
}
