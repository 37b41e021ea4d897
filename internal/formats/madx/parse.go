package madx

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/latticemill/latticemill/core/errors"
	"github.com/latticemill/latticemill/core/geometry"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/reconcile"
)

// parse.go - MADX statement grammar and the semantic pass that turns a
// parsed file into a raw record for the reconciler.
//
// MADX input is a sequence of semicolon-terminated statements. The shapes
// this converter understands:
//
//	TITLE, "machine title";
//	q1: QUADRUPOLE, L=0.5, K1=1.2;
//	cell: LINE=(q1, d1, 2*q1);
//	ring: SEQUENCE, L=10;
//	  q1, AT=0.75;
//	ENDSEQUENCE;
//	USE, SEQUENCE=ring;
//
// Anything else is carried opaquely as a command.

// madxLexer tokenizes MADX statements. Both "!" and "//" start a comment.
var madxLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `(?:!|//)[^\n]*`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Number", Pattern: `[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.$]*`},
	{Name: "Punct", Pattern: `[:;,=()*]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

//nolint:govet // participle grammar tags are not standard struct tags
type madxFile struct {
	Statements []*madxStatement `parser:"@@*"`
}

// madxStatement covers labeled declarations ("q1: QUADRUPOLE, L=0.5;",
// "cell: LINE=(...);") and unlabeled directives ("USE, SEQUENCE=ring;",
// "q1, AT=0.75;") with one shape.
//
//nolint:govet // participle grammar tags are not standard struct tags
type madxStatement struct {
	Label   string     `parser:"( @Ident \":\" )?"`
	Keyword string     `parser:"@Ident"`
	Value   *madxValue `parser:"( \"=\" @@ )?"`
	Args    []*madxArg `parser:"( \",\" @@ )* \";\""`
}

//nolint:govet // participle grammar tags are not standard struct tags
type madxArg struct {
	Str  *string   `parser:"  @String"`
	Pair *madxPair `parser:"| @@"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type madxPair struct {
	Name  string     `parser:"@Ident"`
	Value *madxValue `parser:"( \"=\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type madxValue struct {
	List   []*madxItem `parser:"  \"(\" ( @@ ( \",\" @@ )* )? \")\""`
	Number *float64    `parser:"| @Number"`
	Str    *string     `parser:"| @String"`
	Ident  *string     `parser:"| @Ident"`
}

// madxItem is one entry of a LINE list, optionally with a repeat count
// ("2*cell").
//
//nolint:govet // participle grammar tags are not standard struct tags
type madxItem struct {
	Count *int   `parser:"( @Number \"*\" )?"`
	Name  string `parser:"@Ident"`
}

var madxParser = participle.MustBuild[madxFile](
	participle.Lexer(madxLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// sequenceDecl collects everything a SEQUENCE block contributes: the
// opening directive (carried as a command) and the absolute placements of
// its body.
type sequenceDecl struct {
	name       string
	placements []geometry.Placement
}

// parseMADX parses MADX text into a raw record plus the sequence block, if
// the file declared one.
func parseMADX(text string) (*reconcile.RawRecord, *sequenceDecl, error) {
	file, err := madxParser.ParseString("", text)
	if err != nil {
		return nil, nil, errors.Wrap(err, "malformed madx input")
	}

	raw := reconcile.NewRawRecord()
	var seq *sequenceDecl
	inSequence := false

	for _, stmt := range file.Statements {
		keyword := strings.ToLower(stmt.Keyword)

		if stmt.Label == "" {
			switch keyword {
			case "title":
				raw.Title = firstString(stmt)
			case "use":
				if root, ok := useTarget(stmt); ok {
					raw.Root = root
				}
			case "endsequence":
				inSequence = false
			case "return":
				// End-of-input marker, nothing to record.
			default:
				if inSequence && seq != nil {
					if at, ok := numberArg(stmt.Args, "at"); ok {
						seq.placements = append(seq.placements,
							geometry.Placement{Name: stmt.Keyword, Position: at})
						continue
					}
				}
				raw.Commands = append(raw.Commands, toCommand(stmt))
			}
			continue
		}

		switch keyword {
		case "line":
			if stmt.Value == nil || stmt.Value.List == nil {
				return nil, nil, errors.NewValidation(stmt.Label, "LINE definition without a child list")
			}
			raw.Lattices.Set(stmt.Label, expandItems(stmt.Value.List))

		case lattice.KeywordSequence:
			seq = &sequenceDecl{name: stmt.Label}
			raw.Commands = append(raw.Commands, lattice.Command{
				Keyword: lattice.KeywordSequence,
				Name:    stmt.Label,
				Attrs:   commandAttrs(stmt.Args),
			})
			inSequence = true

		default:
			attrs, at := elementAttrs(stmt.Args)
			raw.AddElement(stmt.Label, stmt.Keyword, attrs)
			if inSequence && seq != nil && at != nil {
				seq.placements = append(seq.placements,
					geometry.Placement{Name: stmt.Label, Position: *at})
			}
		}
	}

	return raw, seq, nil
}

// expandItems flattens a LINE list, applying repeat counts.
func expandItems(items []*madxItem) []string {
	var children []string
	for _, item := range items {
		count := 1
		if item.Count != nil {
			count = *item.Count
		}
		for i := 0; i < count; i++ {
			children = append(children, item.Name)
		}
	}
	return children
}

// elementAttrs converts declaration arguments into raw attributes,
// splitting off an AT= placement when present. Bare flag attributes read
// as 1.
func elementAttrs(args []*madxArg) ([]reconcile.RawAttr, *float64) {
	var attrs []reconcile.RawAttr
	var at *float64
	for _, arg := range args {
		if arg.Pair == nil {
			continue
		}
		if strings.EqualFold(arg.Pair.Name, "at") {
			if arg.Pair.Value != nil && arg.Pair.Value.Number != nil {
				at = arg.Pair.Value.Number
			}
			continue
		}
		attrs = append(attrs, reconcile.RawAttr{
			Name:  arg.Pair.Name,
			Value: valueOf(arg.Pair.Value),
		})
	}
	return attrs, at
}

// toCommand carries an uninterpreted statement as an opaque command.
func toCommand(stmt *madxStatement) lattice.Command {
	return lattice.Command{
		Keyword: strings.ToLower(stmt.Keyword),
		Attrs:   commandAttrs(stmt.Args),
	}
}

func commandAttrs(args []*madxArg) []lattice.CommandAttr {
	var attrs []lattice.CommandAttr
	for _, arg := range args {
		switch {
		case arg.Str != nil:
			attrs = append(attrs, lattice.CommandAttr{Value: lattice.String(unquote(*arg.Str))})
		case arg.Pair != nil:
			attrs = append(attrs, lattice.CommandAttr{
				Name:  arg.Pair.Name,
				Value: valueOf(arg.Pair.Value),
			})
		}
	}
	return attrs
}

// valueOf maps a parsed value onto the canonical scalar model. A bare flag
// (no value) reads as 1, following the MADX convention that naming a flag
// turns it on.
func valueOf(v *madxValue) lattice.Value {
	switch {
	case v == nil:
		return lattice.Number(1)
	case v.Number != nil:
		return lattice.Number(*v.Number)
	case v.Str != nil:
		return lattice.String(unquote(*v.Str))
	case v.Ident != nil:
		return lattice.String(*v.Ident)
	default:
		return lattice.String("")
	}
}

// useTarget extracts the root lattice name from a USE statement. Both
// "USE, SEQUENCE=ring;" and the short "USE, ring;" form are accepted.
func useTarget(stmt *madxStatement) (string, bool) {
	for _, arg := range stmt.Args {
		if arg.Pair == nil {
			continue
		}
		name := strings.ToLower(arg.Pair.Name)
		if name == "sequence" || name == "period" {
			if arg.Pair.Value != nil && arg.Pair.Value.Ident != nil {
				return *arg.Pair.Value.Ident, true
			}
			continue
		}
		if arg.Pair.Value == nil {
			return arg.Pair.Name, true
		}
	}
	return "", false
}

// numberArg returns the numeric value of the named argument.
func numberArg(args []*madxArg, name string) (float64, bool) {
	for _, arg := range args {
		if arg.Pair == nil || !strings.EqualFold(arg.Pair.Name, name) {
			continue
		}
		if arg.Pair.Value != nil && arg.Pair.Value.Number != nil {
			return *arg.Pair.Value.Number, true
		}
	}
	return 0, false
}

// firstString returns the first quoted argument of a statement.
func firstString(stmt *madxStatement) string {
	if stmt.Value != nil && stmt.Value.Str != nil {
		return unquote(*stmt.Value.Str)
	}
	for _, arg := range stmt.Args {
		if arg.Str != nil {
			return unquote(*arg.Str)
		}
	}
	return ""
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
