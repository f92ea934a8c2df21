package convert

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"caster/options"
	"caster/schema"
)

// firstConfig returns the first configuration, in lookup order, any member declares mappings for.
func firstConfig(info *schema.EnumInfo, configs []string) (string, bool) {
	for _, c := range configs {
		for _, m := range info.Members {
			if len(m.Declarations(c)) > 0 {
				return c, true
			}
		}
	}

	return "", false
}

// claims tracks which member owns a mapped value; a default declaration beats a plain one.
type claims struct {
	typ    reflect.Type
	config string
	owner  map[any]string
	dflt   map[any]bool
}

func newClaims(t reflect.Type, config string) *claims {
	return &claims{typ: t, config: config, owner: map[any]string{}, dflt: map[any]bool{}}
}

// claim reports whether member takes key, or an ambiguity error.
func (c *claims) claim(key any, member string, isDefault bool) (bool, error) {
	prev, ok := c.owner[key]
	switch {
	case !ok:
	case isDefault && !c.dflt[key]:
	case !isDefault && c.dflt[key]:
		return false, nil
	default:
		return false, &EnumError{Kind: EnumAmbiguous, Type: c.typ, Config: c.config, Member: prev, Other: member}
	}

	c.owner[key] = member
	c.dflt[key] = isDefault

	return true, nil
}

// 3
func (sy *synth) enumMapping(p schema.Pair) (*schema.Routine, error) {
	if p.From.Kind() == reflect.Ptr || p.To.Kind() == reflect.Ptr {
		return nil, nil
	}

	configs := sy.s.Configurations()

	if info, ok := sy.s.Enum(p.From); ok {
		if config, ok := firstConfig(info, configs); ok {
			return sy.enumForward(p, info, config)
		}
	}

	if info, ok := sy.s.Enum(p.To); ok {
		if config, ok := firstConfig(info, configs); ok {
			return sy.enumReverse(p, info, config)
		}
	}

	return nil, nil
}

// enumForward maps members of the source enum through their declarations.
// Declarations that do not convert into the destination type leave the pair to later steps.
func (sy *synth) enumForward(p schema.Pair, info *schema.EnumInfo, config string) (*schema.Routine, error) {
	table := make(map[any]reflect.Value, len(info.Members))

	var targets *claims
	if _, ok := sy.s.Enum(p.To); ok {
		targets = newClaims(info.Type, config)
	}

	for _, m := range info.Members {
		decls := m.Declarations(config)
		if len(decls) == 0 {
			return nil, &EnumError{Kind: EnumInconsistent, Type: info.Type, Config: config, Member: m.Name}
		}

		d := decls[0]
		for _, c := range decls {
			if c.IsDefault {
				d = c
				break
			}
		}

		target, err := sy.constant(d.Value, p.To)
		if declined(err) {
			return nil, nil
		}

		if err != nil {
			return nil, fmt.Errorf("enum %v member %s: %w", info.Type, m.Name, err)
		}

		if targets != nil {
			if _, err := targets.claim(target.Interface(), m.Name, d.IsDefault); err != nil {
				return nil, err
			}
		}

		table[m.Value] = target
	}

	return sy.enumTable(p, table), nil
}

// enumReverse maps declared values back to members of the destination enum.
func (sy *synth) enumReverse(p schema.Pair, info *schema.EnumInfo, config string) (*schema.Routine, error) {
	table := make(map[any]reflect.Value, len(info.Members))
	owners := newClaims(info.Type, config)

	for _, m := range info.Members {
		decls := m.Declarations(config)
		if len(decls) == 0 {
			return nil, &EnumError{Kind: EnumInconsistent, Type: info.Type, Config: config, Member: m.Name}
		}

		for _, d := range decls {
			key, err := sy.constant(d.Value, p.From)
			if declined(err) {
				return nil, nil
			}

			if err != nil {
				return nil, fmt.Errorf("enum %v member %s: %w", info.Type, m.Name, err)
			}

			took, err := owners.claim(key.Interface(), m.Name, d.IsDefault)
			if err != nil {
				return nil, err
			}

			if took {
				table[key.Interface()] = reflect.ValueOf(m.Value)
			}
		}
	}

	return sy.enumTable(p, table), nil
}

func (sy *synth) enumTable(p schema.Pair, table map[any]reflect.Value) *schema.Routine {
	fallback := sy.fallback(p)

	r := routine(p, StrategyEnum, func(v reflect.Value) (reflect.Value, error) {
		if out, ok := table[v.Interface()]; ok {
			return out, nil
		}

		return fallback.Call(v)
	})
	r.SchemaSpecific = true

	return r
}

// constant converts a declared mapping value into t at build time.
func (sy *synth) constant(value any, t reflect.Type) (reflect.Value, error) {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}

	if v.Type() == t {
		return v, nil
	}

	r, err := sy.routine(v.Type(), t)
	if err != nil {
		return reflect.Value{}, err
	}

	return r.Call(v)
}

// 10
func (sy *synth) enumName(p schema.Pair) (*schema.Routine, error) {
	if !sy.s.Categories().Has(options.CategoryEnumString) {
		return nil, nil
	}

	if info, ok := sy.s.Enum(p.To); ok && isText(p.From) {
		to := p.To

		r := routine(p, StrategyEnumName, func(v reflect.Value) (reflect.Value, error) {
			text := string(textOf(v))
			if m, ok := info.ByName(text); ok {
				return reflect.ValueOf(m.Value), nil
			}

			if m, ok := enumByText(info, text); ok {
				return reflect.ValueOf(m.Value), nil
			}

			return reflect.Value{}, newConversionError(v, to, ErrUnknownMember)
		})
		r.SchemaSpecific = true

		return r, nil
	}

	if info, ok := sy.s.Enum(p.From); ok && p.To.Kind() == reflect.String {
		to := p.To
		fallback := sy.fallback(p)

		r := routine(p, StrategyEnumName, func(v reflect.Value) (reflect.Value, error) {
			if m, ok := info.ByValue(v); ok {
				return reflect.ValueOf(m.Name).Convert(to), nil
			}

			return fallback.Call(v)
		})
		r.SchemaSpecific = true

		return r, nil
	}

	return nil, nil
}

// enumByText finds a member by its underlying value written as text.
func enumByText(info *schema.EnumInfo, text string) (schema.EnumMember, bool) {
	text = strings.TrimSpace(text)

	switch {
	case info.Type.Kind() == reflect.String:
		return info.ByValue(reflect.ValueOf(text))
	case info.Type.Kind() >= reflect.Uint && info.Type.Kind() <= reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return schema.EnumMember{}, false
		}

		return info.ByValue(reflect.ValueOf(n))
	default:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return schema.EnumMember{}, false
		}

		return info.ByValue(reflect.ValueOf(n))
	}
}

// declined reports whether a declaration conversion failed in a way that makes the mapping inapplicable.
func declined(err error) bool {
	return errors.Is(err, ErrNotConvertible) || errors.Is(err, errInProgress)
}
