package namemap

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed map.json
var defaultMapJSON []byte

// mapFile is the on-disk shape of the bundled name-map configuration.
type mapFile struct {
	Map []Row `json:"map"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Parse builds a table from name-map configuration JSON, the same shape as
// the bundled map.json.
func Parse(data []byte) (*Table, error) {
	var mf mapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse name map: %w", err)
	}
	return New(mf.Map)
}

// Default returns the table built from the bundled map.json. It is
// constructed once and never mutated afterwards, so concurrent readers
// need no synchronization.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(defaultMapJSON)
	})
	return defaultTable, defaultErr
}

// MustDefault returns the bundled table and panics if it fails to build.
// The bundled configuration is compiled in, so a failure is a programming
// error caught by the package tests.
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}
