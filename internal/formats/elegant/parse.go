package elegant

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/latticemill/latticemill/core/errors"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/reconcile"
)

// parse.go - elegant statement grammar and the semantic pass.
//
// elegant lattice files are line-oriented: one statement per line, "&" at
// the end of a line continues it, "!" starts a comment. Statement shapes:
//
//	q1: KQUAD, L=0.5, K1=1.2
//	cell: LINE=(q1, d1, 2*q1)
//	USE, ring
//	RETURN
//
// The file is first split into logical lines, then each line is parsed
// with the statement grammar.

// elegantLexer tokenizes one logical line.
var elegantLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Number", Pattern: `[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.$]*`},
	{Name: "Punct", Pattern: `[:,=()*]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

//nolint:govet // participle grammar tags are not standard struct tags
type elegantStatement struct {
	Label   string        `parser:"( @Ident \":\" )?"`
	Keyword string        `parser:"@Ident"`
	Value   *elegantValue `parser:"( \"=\" @@ )?"`
	Args    []*elegantArg `parser:"( \",\" @@ )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type elegantArg struct {
	Str  *string      `parser:"  @String"`
	Pair *elegantPair `parser:"| @@"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type elegantPair struct {
	Name  string        `parser:"@Ident"`
	Value *elegantValue `parser:"( \"=\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type elegantValue struct {
	List   []*elegantItem `parser:"  \"(\" ( @@ ( \",\" @@ )* )? \")\""`
	Number *float64       `parser:"| @Number"`
	Str    *string        `parser:"| @String"`
	Ident  *string        `parser:"| @Ident"`
}

// elegantItem is one entry of a LINE list, optionally with a repeat count
// ("2*cell").
//
//nolint:govet // participle grammar tags are not standard struct tags
type elegantItem struct {
	Count *int   `parser:"( @Number \"*\" )?"`
	Name  string `parser:"@Ident"`
}

var elegantParser = participle.MustBuild[elegantStatement](
	participle.Lexer(elegantLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// titlePrefix marks the title comment this converter writes (and reads
// back) at the top of an elegant file.
const titlePrefix = "! TITLE:"

// parseElegant parses elegant text into a raw record.
func parseElegant(text string) (*reconcile.RawRecord, error) {
	raw := reconcile.NewRawRecord()

	for _, line := range logicalLines(text, raw) {
		stmt, err := elegantParser.ParseString("", line)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed elegant statement %q", line)
		}
		keyword := strings.ToLower(stmt.Keyword)

		if stmt.Label == "" {
			switch keyword {
			case "use":
				if root, ok := useTarget(stmt); ok {
					raw.Root = root
				}
			case "return":
				return raw, nil
			default:
				raw.Commands = append(raw.Commands, toCommand(stmt))
			}
			continue
		}

		if keyword == "line" {
			if stmt.Value == nil || stmt.Value.List == nil {
				return nil, errors.NewValidation(stmt.Label, "LINE definition without a child list")
			}
			raw.Lattices.Set(stmt.Label, expandItems(stmt.Value.List))
			continue
		}

		raw.AddElement(stmt.Label, stmt.Keyword, elementAttrs(stmt.Args))
	}

	return raw, nil
}

// logicalLines splits the text into parseable statements: comments are
// stripped (capturing the title comment into the record), "&"
// continuations are joined, and blank lines are dropped.
func logicalLines(text string, raw *reconcile.RawRecord) []string {
	var lines []string
	var pending string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, titlePrefix) && raw.Title == "" {
			raw.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, titlePrefix))
			continue
		}
		if i := commentStart(trimmed); i >= 0 {
			trimmed = strings.TrimSpace(trimmed[:i])
		}
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, "&") {
			pending += strings.TrimSpace(strings.TrimSuffix(trimmed, "&")) + " "
			continue
		}
		lines = append(lines, pending+trimmed)
		pending = ""
	}
	if pending != "" {
		lines = append(lines, strings.TrimSpace(pending))
	}
	return lines
}

// commentStart returns the index of the first "!" outside a quoted string,
// or -1.
func commentStart(line string) int {
	inString := false
	for i, r := range line {
		switch {
		case r == '"':
			inString = !inString
		case r == '!' && !inString:
			return i
		}
	}
	return -1
}

// expandItems flattens a LINE list, applying repeat counts.
func expandItems(items []*elegantItem) []string {
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

// elementAttrs converts declaration arguments into raw attributes. Bare
// flag attributes read as 1.
func elementAttrs(args []*elegantArg) []reconcile.RawAttr {
	var attrs []reconcile.RawAttr
	for _, arg := range args {
		if arg.Pair == nil {
			continue
		}
		attrs = append(attrs, reconcile.RawAttr{
			Name:  arg.Pair.Name,
			Value: valueOf(arg.Pair.Value),
		})
	}
	return attrs
}

// toCommand carries an uninterpreted statement as an opaque command.
func toCommand(stmt *elegantStatement) lattice.Command {
	var attrs []lattice.CommandAttr
	for _, arg := range stmt.Args {
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
	return lattice.Command{Keyword: strings.ToLower(stmt.Keyword), Attrs: attrs}
}

// valueOf maps a parsed value onto the canonical scalar model. A bare flag
// (no value) reads as 1.
func valueOf(v *elegantValue) lattice.Value {
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

// useTarget extracts the root lattice name from a USE statement
// ("USE, ring").
func useTarget(stmt *elegantStatement) (string, bool) {
	for _, arg := range stmt.Args {
		if arg.Pair != nil && arg.Pair.Value == nil {
			return arg.Pair.Name, true
		}
		if arg.Str != nil {
			return unquote(*arg.Str), true
		}
	}
	return "", false
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
