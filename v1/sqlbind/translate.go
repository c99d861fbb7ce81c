package sqlbind

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker selects the native placeholder syntax a template is rewritten to.
type Marker int

const (
	// Question keeps `?` for positional templates and emits `?N` for named ones.
	Question Marker = iota
	// Dollar emits `$N` for both styles.
	Dollar
)

func (m Marker) String() string {
	switch m {
	case Question:
		return "question"
	case Dollar:
		return "dollar"
	default:
		return "marker(" + strconv.Itoa(int(m)) + ")"
	}
}

// Style is the placeholder style detected in a template.
type Style int

const (
	StyleNone Style = iota
	StylePositional
	StyleNamed
)

func (s Style) String() string {
	switch s {
	case StylePositional:
		return "positional"
	case StyleNamed:
		return "named"
	default:
		return "none"
	}
}

// Named is an argument set for templates using `@name` placeholders.
type Named map[string]any

// Compiled is a template rewritten for one Marker. It holds no argument
// values and can be reused for any number of Bind calls.
type Compiled struct {
	// Template is the original text as written by the caller.
	Template string
	// Text is the engine-native statement text.
	Text string
	// Style is the placeholder style found in Template.
	Style Style
	// Positional is the number of `?` tokens for positional templates.
	Positional int
	// Names holds one entry per distinct named slot, in first-seen order.
	// Slot i is rendered as the (i+1)-th native marker.
	Names []string
}

// Bound is a statement ready for the driver: native text plus its values.
type Bound struct {
	Text   string
	Values []any
}

// Translate compiles template for marker and binds args in one step.
func Translate(template string, marker Marker, args ...any) (Bound, error) {
	c, err := Compile(template, marker)
	if err != nil {
		return Bound{}, err
	}
	values, err := c.Bind(args...)
	if err != nil {
		return Bound{}, err
	}
	return Bound{Text: c.Text, Values: values}, nil
}

// Compile tokenizes template and rewrites its placeholders for marker.
func Compile(template string, marker Marker) (*Compiled, error) {
	var (
		out        strings.Builder
		positional int
		names      []string
		slots      map[string]int
	)
	out.Grow(len(template) + 8)

	for i := 0; i < len(template); i++ {
		ch := template[i]
		switch {
		case ch == '?':
			if i+1 < len(template) && isDigit(template[i+1]) {
				return nil, bindErr(template, ErrNumberedPlaceholder)
			}
			positional++
			writeMarker(&out, marker, positional, false)

		case ch == '@' && i+1 < len(template) && isIdentStart(template[i+1]):
			j := i + 1
			for j < len(template) && isIdentPart(template[j]) {
				j++
			}
			name := template[i+1 : j]
			if slots == nil {
				slots = make(map[string]int)
			}
			slot, ok := slots[name]
			if !ok {
				names = append(names, name)
				slot = len(names)
				slots[name] = slot
			}
			writeMarker(&out, marker, slot, true)
			i = j - 1

		default:
			out.WriteByte(ch)
		}
	}

	if positional > 0 && len(names) > 0 {
		return nil, bindErr(template, ErrMixedPlaceholders)
	}

	c := &Compiled{
		Template:   template,
		Text:       out.String(),
		Positional: positional,
		Names:      names,
	}
	switch {
	case positional > 0:
		c.Style = StylePositional
	case len(names) > 0:
		c.Style = StyleNamed
	}
	return c, nil
}

// Bind produces the ordered value slice for args.
//
// Positional templates need exactly one argument per `?`. Named templates
// need a single Named (or map[string]any) argument; keys the template does
// not reference are ignored and referenced keys that are missing bind nil.
// A template without placeholders accepts no arguments or one Named set.
func (c *Compiled) Bind(args ...any) ([]any, error) {
	named, isNamed := namedArgs(args)

	switch c.Style {
	case StyleNamed:
		if !isNamed {
			return nil, bindErr(c.Template, fmt.Errorf("%w: named template got %d positional argument(s)", ErrStyleMismatch, len(args)))
		}
		values := make([]any, len(c.Names))
		for i, name := range c.Names {
			values[i] = named[name]
		}
		return values, nil

	case StylePositional:
		if isNamed {
			return nil, bindErr(c.Template, fmt.Errorf("%w: positional template got a named argument set", ErrStyleMismatch))
		}
		if len(args) != c.Positional {
			return nil, bindErr(c.Template, fmt.Errorf("%w: want %d, got %d", ErrArgumentCount, c.Positional, len(args)))
		}
		values := make([]any, len(args))
		copy(values, args)
		return values, nil

	default:
		if isNamed || len(args) == 0 {
			return nil, nil
		}
		return nil, bindErr(c.Template, fmt.Errorf("%w: want 0, got %d", ErrArgumentCount, len(args)))
	}
}

func namedArgs(args []any) (map[string]any, bool) {
	if len(args) != 1 {
		return nil, false
	}
	switch v := args[0].(type) {
	case Named:
		return v, true
	case map[string]any:
		return v, true
	default:
		return nil, false
	}
}

func writeMarker(out *strings.Builder, marker Marker, n int, named bool) {
	switch marker {
	case Dollar:
		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
	default:
		out.WriteByte('?')
		if named {
			out.WriteString(strconv.Itoa(n))
		}
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}
