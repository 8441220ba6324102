package netlist

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMatrix/pkg/component"
	"github.com/chewxy/sexp"
)

// Inventories can also be exchanged as s-expressions:
//
//	(maxlist BENCH1
//	  (comp R X1 (nodes A B) (value 1K))
//	  (comp SHORTCUT S1 (nodes C D) (group 2)))

// DecodeSexp reads one maxlist s-expression and returns its name and parts.
func DecodeSexp(r io.Reader) (string, []component.Component, error) {
	exprs, err := sexp.Parse(r)
	if err != nil {
		return "", nil, fmt.Errorf("netlist: s-expression: %w", err)
	}
	return decodeMaxlist(exprs)
}

// DecodeSexpString is DecodeSexp for a string.
func DecodeSexpString(input string) (string, []component.Component, error) {
	exprs, err := sexp.ParseString(input)
	if err != nil {
		return "", nil, fmt.Errorf("netlist: s-expression: %w", err)
	}
	return decodeMaxlist(exprs)
}

func decodeMaxlist(exprs []sexp.Sexp) (string, []component.Component, error) {
	if len(exprs) != 1 {
		return "", nil, fmt.Errorf("netlist: expected one maxlist expression, got %d", len(exprs))
	}
	items := elements(exprs[0])
	if len(items) < 2 || atom(items[0]) != "MAXLIST" || !items[1].IsLeaf() {
		return "", nil, fmt.Errorf("netlist: expected (maxlist NAME ...)")
	}
	name := atom(items[1])

	var comps []component.Component
	for i, item := range items[2:] {
		c, err := decodeComp(item)
		if err != nil {
			return "", nil, fmt.Errorf("netlist: maxlist %s entry %d: %w", name, i, err)
		}
		comps = append(comps, c)
	}
	return name, comps, nil
}

func decodeComp(s sexp.Sexp) (component.Component, error) {
	fields := elements(s)
	if len(fields) < 3 || atom(fields[0]) != "COMP" {
		return component.Component{}, fmt.Errorf("expected (comp TYPE NAME ...)")
	}
	c := component.Component{Type: atom(fields[1]), Name: atom(fields[2])}
	def, ok := component.Lookup(c.Type)
	if !ok {
		return component.Component{}, fmt.Errorf("unknown component type %q", c.Type)
	}

	for _, f := range fields[3:] {
		kv := elements(f)
		if len(kv) == 0 || f.IsLeaf() {
			return component.Component{}, fmt.Errorf("unexpected atom %q", atom(f))
		}
		args := make([]string, 0, len(kv)-1)
		for _, a := range kv[1:] {
			args = append(args, atom(a))
		}
		switch key := atom(kv[0]); key {
		case "NODES":
			c.Terminals = args
		case "VALUE":
			c.Value = strings.Join(args, " ")
		case "SPECIAL":
			c.Special = strings.Join(args, " ")
		case "GROUP":
			if len(args) != 1 {
				return component.Component{}, fmt.Errorf("group takes one number")
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return component.Component{}, fmt.Errorf("invalid group %q", args[0])
			}
			c.Group = n
		default:
			return component.Component{}, fmt.Errorf("unknown field %q", key)
		}
	}

	if len(c.Terminals) != def.Terminals {
		return component.Component{}, fmt.Errorf("%s expects %d terminal(s), got %d", c.Type, def.Terminals, len(c.Terminals))
	}
	if def.HasValue && c.Value == "" {
		return component.Component{}, fmt.Errorf("%s requires a value", c.Type)
	}
	return c, nil
}

// EncodeSexp renders an inventory in the maxlist s-expression form.
func EncodeSexp(name string, comps []component.Component) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(maxlist %s\n", name)
	for _, c := range comps {
		fmt.Fprintf(&b, "  (comp %s %s (nodes %s)", c.Type, c.Name, strings.Join(c.Terminals, " "))
		if c.Value != "" {
			fmt.Fprintf(&b, " (value %s)", c.Value)
		}
		if c.Group != 0 {
			fmt.Fprintf(&b, " (group %d)", c.Group)
		}
		if c.Special != "" {
			fmt.Fprintf(&b, " (special %s)", c.Special)
		}
		b.WriteString(")\n")
	}
	b.WriteString(")\n")
	return b.String()
}

// elements flattens a list expression into its members.
func elements(s sexp.Sexp) []sexp.Sexp {
	var out []sexp.Sexp
	for cur := s; !isNil(cur); cur = cur.Tail() {
		if cur.IsLeaf() {
			out = append(out, cur)
			break
		}
		if cur.LeafCount() == 0 {
			break
		}
		head := cur.Head()
		if isNil(head) {
			break
		}
		out = append(out, head)
	}
	return out
}

func atom(s sexp.Sexp) string {
	if isNil(s) {
		return ""
	}
	return strings.ToUpper(strings.Trim(fmt.Sprint(s), `"`))
}

// isNil catches typed nil values stored in the interface.
func isNil(s sexp.Sexp) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}
