package convert

import (
	"database/sql"
	"encoding"
	"errors"
	"fmt"
	"reflect"

	"caster/options"
	"caster/primitive"
	"caster/schema"
)

const (
	StrategyIdentity  = "identity"
	StrategyBox       = "box"
	StrategyEnum      = "enum mapping"
	StrategyBuiltin   = "builtin"
	StrategyConvert   = "type conversion"
	StrategyConstruct = "construct"
	StrategyUnwrap    = "unwrap"
	StrategyScan      = "scan"
	StrategyParse     = "parse text"
	StrategyFormat    = "format text"
	StrategyEnumName  = "enum name"
	StrategyPointer   = "pointer"
	StrategyDynamic   = "dynamic"
	StrategyFallback  = "fallback"
)

// errInProgress declines a strategy that would need the pair being synthesized.
var errInProgress = errors.New("pair is being synthesized")

var (
	bytesType           = reflect.TypeFor[[]byte]()
	errorType           = reflect.TypeFor[error]()
	scannerType         = reflect.TypeFor[sql.Scanner]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	stringerType        = reflect.TypeFor[fmt.Stringer]()
)

// builtinCategories are the structural built-ins of step 4; textual ones wait for the fallback.
const builtinCategories = options.CategoryAll &^ options.CategoryText

type strategy func(p schema.Pair) (*schema.Routine, error)

// synth is the scratch state of one synthesis call. It is not shared between goroutines.
type synth struct {
	s        *schema.Schema
	building map[schema.Pair]bool
	chain    []strategy

	// cache stamps at synthesis start
	stamp, globalStamp uint64
}

func newSynth(s *schema.Schema) *synth {
	sy := &synth{
		s:           s,
		building:    map[schema.Pair]bool{},
		stamp:       s.Routines().Stamp(),
		globalStamp: schema.Global().Stamp(),
	}
	sy.chain = []strategy{
		sy.identity,
		sy.converter,
		sy.enumMapping,
		sy.builtin,
		sy.construct,
		sy.unwrap,
		sy.scan,
		sy.parse,
		sy.format,
		sy.enumName,
		sy.pointer,
	}

	return sy
}

// build runs the strategy chain for p. A strategy returns a nil routine and nil error when it does not apply.
func (sy *synth) build(p schema.Pair) (*schema.Routine, error) {
	for _, step := range sy.chain {
		r, err := step(p)
		if err != nil {
			return nil, err
		}

		if r != nil {
			logBuilt(sy.s, r)
			return r, nil
		}
	}

	r := sy.fallback(p)
	logBuilt(sy.s, r)

	return r, nil
}

// routine returns a nested routine, building it without blocking on other builders.
func (sy *synth) routine(from, to reflect.Type) (*schema.Routine, error) {
	p := schema.PairOf(from, to)
	if r, ok := lookup(sy.s, p); ok {
		return r, nil
	}

	if sy.building[p] {
		return nil, errInProgress
	}

	sy.building[p] = true
	defer delete(sy.building, p)

	r, err := sy.build(p)
	if err != nil {
		return nil, err
	}

	return sy.s.Routines().LoadOrStoreAt(sy.share(r), sy.stamp), nil
}

// solid returns a nested routine only when some strategy other than the fallback produced it.
func (sy *synth) solid(from, to reflect.Type) (*schema.Routine, error) {
	r, err := sy.routine(from, to)
	if errors.Is(err, errInProgress) {
		return nil, nil
	}

	if err != nil || r.Strategy == StrategyFallback {
		return nil, err
	}

	return r, nil
}

func routine(p schema.Pair, strategy string, fn schema.Func) *schema.Routine {
	return schema.NewRoutine(p.From, p.To, strategy, fn)
}

// 1
func (sy *synth) identity(p schema.Pair) (*schema.Routine, error) {
	if p.From == p.To {
		r := routine(p, StrategyIdentity, func(v reflect.Value) (reflect.Value, error) { return v, nil })
		r.HandlesNil = true

		return r, nil
	}

	if p.To.Kind() == reflect.Interface && p.From.Implements(p.To) {
		to := p.To

		return routine(p, StrategyBox, func(v reflect.Value) (reflect.Value, error) {
			out := reflect.New(to).Elem()
			out.Set(v)

			return out, nil
		}), nil
	}

	return nil, nil
}

// 2
func (sy *synth) converter(p schema.Pair) (*schema.Routine, error) {
	r, ok := sy.s.Converter(p.From, p.To)
	if !ok {
		return nil, nil
	}

	return r, nil
}

// 4
func (sy *synth) builtin(p schema.Pair) (*schema.Routine, error) {
	from, to := p.From, p.To

	if fn, ok := primitive.Lookup(from, to, sy.s.Categories()&builtinCategories); ok {
		return routine(p, StrategyBuiltin, func(v reflect.Value) (reflect.Value, error) {
			return fn(v, to)
		}), nil
	}

	if primitive.KindOf(from).IsNumber() || primitive.KindOf(to).IsNumber() {
		return nil, nil
	}

	if from.Kind() == to.Kind() && from.ConvertibleTo(to) && to.ConvertibleTo(from) ||
		from.Kind() == reflect.String && to == bytesType ||
		from == bytesType && to.Kind() == reflect.String {
		return routine(p, StrategyConvert, func(v reflect.Value) (reflect.Value, error) {
			return v.Convert(to), nil
		}), nil
	}

	return nil, nil
}

// 5
func (sy *synth) construct(p schema.Pair) (*schema.Routine, error) {
	to := p.To
	if to.Kind() != reflect.Struct || to.NumField() != 1 || !to.Field(0).IsExported() {
		return nil, nil
	}

	field := to.Field(0)
	if p.From.AssignableTo(field.Type) {
		return routine(p, StrategyConstruct, func(v reflect.Value) (reflect.Value, error) {
			out := reflect.New(to).Elem()
			out.Field(0).Set(v)

			return out, nil
		}), nil
	}

	inner, err := sy.solid(p.From, field.Type)
	if inner == nil || err != nil {
		return nil, err
	}

	r := routine(p, StrategyConstruct, func(v reflect.Value) (reflect.Value, error) {
		x, err := inner.Call(v)
		if err != nil {
			return reflect.Value{}, err
		}

		out := reflect.New(to).Elem()
		out.Field(0).Set(x)

		return out, nil
	})
	r.SchemaSpecific = inner.SchemaSpecific

	return r, nil
}

// 6
func (sy *synth) unwrap(p schema.Pair) (*schema.Routine, error) {
	from, to := p.From, p.To
	if from.Kind() != reflect.Struct {
		return nil, nil
	}

	if f, ok := from.FieldByName("Value"); ok && f.IsExported() && f.Type.AssignableTo(to) {
		return routine(p, StrategyUnwrap, func(v reflect.Value) (reflect.Value, error) {
			out := reflect.New(to).Elem()
			out.Set(v.FieldByIndex(f.Index))

			return out, nil
		}), nil
	}

	m, ok := from.MethodByName("Value")
	if !ok || m.Type.NumIn() != 1 {
		return nil, nil
	}

	mt := m.Type
	switch {
	case mt.NumOut() == 1 && mt.Out(0).AssignableTo(to):
	case mt.NumOut() == 2 && mt.Out(0).AssignableTo(to) && mt.Out(1) == errorType:
	default:
		return nil, nil
	}

	return routine(p, StrategyUnwrap, func(v reflect.Value) (reflect.Value, error) {
		res := v.MethodByName("Value").Call(nil)
		if len(res) == 2 && !res[1].IsNil() {
			return reflect.Value{}, res[1].Interface().(error)
		}

		out := reflect.New(to).Elem()
		out.Set(res[0])

		return out, nil
	}), nil
}

// 7
func (sy *synth) scan(p schema.Pair) (*schema.Routine, error) {
	to := p.To
	if to.Kind() == reflect.Ptr || !reflect.PointerTo(to).Implements(scannerType) || !sy.s.IsScalarType(p.From) {
		return nil, nil
	}

	return routine(p, StrategyScan, func(v reflect.Value) (reflect.Value, error) {
		out := reflect.New(to)
		if err := out.Interface().(sql.Scanner).Scan(v.Interface()); err != nil {
			return reflect.Value{}, err
		}

		return out.Elem(), nil
	}), nil
}

func isText(t reflect.Type) bool {
	return t.Kind() == reflect.String || t == bytesType
}

func textOf(v reflect.Value) []byte {
	if v.Kind() == reflect.String {
		return []byte(v.String())
	}

	return v.Bytes()
}

// 8
func (sy *synth) parse(p schema.Pair) (*schema.Routine, error) {
	to := p.To
	if !isText(p.From) || to.Kind() == reflect.Ptr || !reflect.PointerTo(to).Implements(textUnmarshalerType) {
		return nil, nil
	}

	return routine(p, StrategyParse, func(v reflect.Value) (reflect.Value, error) {
		out := reflect.New(to)
		if err := out.Interface().(encoding.TextUnmarshaler).UnmarshalText(textOf(v)); err != nil {
			return reflect.Value{}, err
		}

		return out.Elem(), nil
	}), nil
}

// 9
func (sy *synth) format(p schema.Pair) (*schema.Routine, error) {
	from, to := p.From, p.To
	if to.Kind() != reflect.String || from.Kind() == reflect.Ptr || from.Kind() == reflect.Interface {
		return nil, nil
	}

	switch {
	case from.Implements(textMarshalerType):
		return routine(p, StrategyFormat, func(v reflect.Value) (reflect.Value, error) {
			b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(string(b)).Convert(to), nil
		}), nil
	case from.Implements(stringerType):
		return routine(p, StrategyFormat, func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Interface().(fmt.Stringer).String()).Convert(to), nil
		}), nil
	}

	return nil, nil
}

// 11
func (sy *synth) pointer(p schema.Pair) (*schema.Routine, error) {
	from, to := p.From, p.To

	switch {
	case from.Kind() == reflect.Interface:
		return sy.dynamic(p), nil
	case from.Kind() == reflect.Ptr && to.Kind() == reflect.Ptr:
		return sy.rewrap(p, from.Elem(), to.Elem())
	case from.Kind() == reflect.Ptr:
		return sy.deref(p)
	case to.Kind() == reflect.Ptr:
		return sy.rewrap(p, from, to.Elem())
	}

	return nil, nil
}

func (sy *synth) deref(p schema.Pair) (*schema.Routine, error) {
	inner, err := sy.routine(p.From.Elem(), p.To)
	if errors.Is(err, errInProgress) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	def, registered := sy.s.DefaultValue(p.To)

	r := routine(p, StrategyPointer, func(v reflect.Value) (reflect.Value, error) {
		if v.IsNil() {
			return def, nil
		}

		return inner.Call(v.Elem())
	})
	r.HandlesNil = true
	r.SchemaSpecific = inner.SchemaSpecific || registered

	return r, nil
}

func (sy *synth) rewrap(p schema.Pair, from, elem reflect.Type) (*schema.Routine, error) {
	inner, err := sy.routine(from, elem)
	if errors.Is(err, errInProgress) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	deref := p.From.Kind() == reflect.Ptr
	r := routine(p, StrategyPointer, func(v reflect.Value) (reflect.Value, error) {
		if deref {
			v = v.Elem()
		}

		x, err := inner.Call(v)
		if err != nil {
			return reflect.Value{}, err
		}

		out := reflect.New(elem)
		out.Elem().Set(x)

		return out, nil
	})
	r.SchemaSpecific = inner.SchemaSpecific

	return r, nil
}

// dynamic converts by the run-time type of an interface value.
func (sy *synth) dynamic(p schema.Pair) *schema.Routine {
	s, to := sy.s, p.To

	r := routine(p, StrategyDynamic, func(v reflect.Value) (reflect.Value, error) {
		e := v.Elem()

		inner, err := Routine(s, e.Type(), to)
		if err != nil {
			return reflect.Value{}, err
		}

		return inner.Call(e)
	})
	r.SchemaSpecific = true

	return r
}
