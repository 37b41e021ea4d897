// Package lattice defines the canonical in-memory representation that all
// foreign lattice file formats convert through.
//
// A Lattice holds machine metadata (title, root), an ordered table of
// elements (magnets, cavities, markers, drift spaces), an ordered table of
// named sub-lattices (ordered reference lists over elements and other
// lattices), and an opaque list of format-specific commands.
//
// The package also provides the topological sorter used by emitters to
// print lattice definitions before the definitions that reference them,
// structural validation, and the diagnostics report type threaded through
// every conversion.
package lattice
