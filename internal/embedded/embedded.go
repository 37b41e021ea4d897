// Package embedded wires up the full set of compiled-in format handlers.
// Each handler package registers itself from init(); a blank import of
// this package is all a binary needs to get the complete registry.
package embedded

import (
	// Import format handlers to register them with the format registry.
	_ "github.com/latticemill/latticemill/internal/formats/elegant"
	_ "github.com/latticemill/latticemill/internal/formats/latticejson"
	_ "github.com/latticemill/latticemill/internal/formats/madx"
	_ "github.com/latticemill/latticemill/internal/formats/pyat"
)
