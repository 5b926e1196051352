package ociocfg

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed builtin/default.yaml
var defaultConfigData []byte

//go:embed builtin/studio.yaml
var studioConfigData []byte

var builtins = map[string][]byte{
	"default":              defaultConfigData,
	"studio-config-latest": studioConfigData,
	"studio-config-v1.0.0": studioConfigData,
}

// Builtin loads one of the configurations compiled into the library. The
// identifier may carry an "ocio://" scheme prefix, mirroring how engine
// builtins are usually addressed.
func Builtin(identifier string) (*Config, error) {
	name := strings.TrimPrefix(identifier, "ocio://")
	data, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin config %q", identifier)
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		// Embedded documents are validated by tests; a parse failure here
		// means the identifier table and the assets drifted apart.
		return nil, fmt.Errorf("builtin config %q: %w", identifier, err)
	}
	return cfg, nil
}

// BuiltinNames lists the identifiers accepted by Builtin, without the scheme
// prefix.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	return names
}
