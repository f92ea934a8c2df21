package convert

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"caster/node"
	"caster/options"
	"caster/primitive"
	"caster/schema"
)

// 12
func (sy *synth) fallback(p schema.Pair) *schema.Routine {
	to := p.To
	text, hasText := primitive.Lookup(p.From, to, sy.s.Categories()&options.CategoryText)

	return routine(p, StrategyFallback, func(v reflect.Value) (reflect.Value, error) {
		var first error

		if hasText {
			out, err := text(v, to)
			if err == nil {
				return out, nil
			}

			first = err
		}

		out, err := lateBound(v, to)
		if err == nil {
			return out, nil
		}

		if first == nil {
			first = err
		}

		return reflect.Value{}, newConversionError(v, to, first)
	})
}

// lateBound converts by the destination kind using spf13/cast for scalars
// and a weak mapstructure decode for composite destinations.
func lateBound(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	if !v.CanInterface() {
		return reflect.Value{}, fmt.Errorf("%w: value of %v is not accessible", ErrNoLateBound, v.Type())
	}

	x := predeclared(v).Interface()

	switch kind := primitive.KindOf(to); {
	case kind == primitive.KindTime:
		t, err := cast.ToTimeE(x)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(t), nil
	case kind == primitive.KindDuration:
		d, err := cast.ToDurationE(x)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(d).Convert(to), nil
	case kind == primitive.KindBool:
		b, err := cast.ToBoolE(x)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(b).Convert(to), nil
	case kind == primitive.KindString:
		s, err := cast.ToStringE(x)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(s).Convert(to), nil
	case kind.IsFloat():
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return reflect.Value{}, err
		}

		return narrow(reflect.ValueOf(f), to)
	case kind.IsSigned():
		n, err := cast.ToInt64E(x)
		if err != nil {
			return reflect.Value{}, err
		}

		return narrow(reflect.ValueOf(n), to)
	case kind.IsUnsigned():
		n, err := cast.ToUint64E(x)
		if err != nil {
			return reflect.Value{}, err
		}

		return narrow(reflect.ValueOf(n), to)
	}

	switch to.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return decode(x, to)
	}

	return reflect.Value{}, fmt.Errorf("%w: %v to %v", ErrNoLateBound, v.Type(), to)
}

// predeclared strips named basic types down to their predeclared counterparts.
func predeclared(v reflect.Value) reflect.Value {
	if v.Type().PkgPath() == "" || v.Kind() == reflect.Struct {
		return v
	}

	switch k := primitive.KindOf(v.Type()); k {
	case 0, primitive.KindTime, primitive.KindDuration:
		return v
	default:
		if v.Kind() == reflect.String {
			return reflect.ValueOf(v.String())
		}

		if v.Kind() == reflect.Bool {
			return reflect.ValueOf(v.Bool())
		}

		if k.IsSigned() {
			return reflect.ValueOf(v.Int())
		}

		if k.IsUnsigned() {
			return reflect.ValueOf(v.Uint())
		}

		return reflect.ValueOf(v.Float())
	}
}

func narrow(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	fn, ok := primitive.Lookup(v.Type(), to, options.CategorySafeNumber|options.CategoryUnsafeNumber)
	if !ok {
		return v.Convert(to), nil
	}

	return fn(v, to)
}

func decode(x any, to reflect.Type) (reflect.Value, error) {
	out := reflect.New(to)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          node.TagName,
		Result:           out.Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return reflect.Value{}, err
	}

	if err := dec.Decode(x); err != nil {
		return reflect.Value{}, err
	}

	return out.Elem(), nil
}
