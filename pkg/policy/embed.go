package policy

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed defaults.yaml
var defaultTable []byte

// Default loads the built-in policy table shipped with the engine.
func Default() (*Table, error) {
	return Load(defaultTable)
}

// LoadFile loads a policy table from an override file on disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy table %s: %w", path, err)
	}
	return Load(data)
}
