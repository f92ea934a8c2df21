package primitive

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"caster/options"
	"caster/utils"
)

var (
	ErrOutOfRange = errors.New("value is out of range of the target type")
	ErrNotBool    = errors.New("value is not a recognizable boolean")
)

// Func converts src into a fresh value of type dst.
type Func func(src reflect.Value, dst reflect.Type) (reflect.Value, error)

var funcs map[ConversionPair]Func

func init() {
	funcs = map[ConversionPair]Func{}

	for fromKind := KindEnum(0); int(fromKind) < KindTotal; fromKind++ {
		if fromKind.IsNumber() {
			for toKind := KindEnum(0); int(toKind) < KindTotal; toKind++ {
				if toKind.IsNumber() {
					funcs[ConversionPair{fromKind, toKind}] = convertNumber
				}
			}

			funcs[ConversionPair{fromKind, KindString}] = formatNumber
			funcs[ConversionPair{KindString, fromKind}] = parseNumber
		}

		if fromKind.IsInteger() {
			funcs[ConversionPair{fromKind, KindBool}] = numberToBool
			funcs[ConversionPair{KindBool, fromKind}] = boolToNumber

			funcs[ConversionPair{fromKind, KindTime}] = unixToTime
			funcs[ConversionPair{KindTime, fromKind}] = timeToUnix

			funcs[ConversionPair{fromKind, KindDuration}] = nanosToDuration
			funcs[ConversionPair{KindDuration, fromKind}] = durationToNanos
		}
	}

	funcs[ConversionPair{KindString, KindBool}] = parseBool
	funcs[ConversionPair{KindBool, KindString}] = formatBool

	funcs[ConversionPair{KindString, KindTime}] = parseTime
	funcs[ConversionPair{KindTime, KindString}] = formatTime

	funcs[ConversionPair{KindString, KindDuration}] = parseDuration
	funcs[ConversionPair{KindDuration, KindString}] = formatDuration

	for _, k := range []KindEnum{KindFloat32, KindFloat64} {
		funcs[ConversionPair{k, KindDuration}] = secondsToDuration
		funcs[ConversionPair{KindDuration, k}] = durationToSeconds
	}
}

// Lookup returns the built-in conversion between src and dst if its category is allowed.
func Lookup(src, dst reflect.Type, allowed options.CategoryEnum) (Func, bool) {
	pair := ConversionPair{KindOf(src), KindOf(dst)}

	category, ok := CategoryOf(pair)
	if !ok || allowed&category == 0 {
		return nil, false
	}

	fn, ok := funcs[pair]

	return fn, ok
}

func outOfRange(src reflect.Value, dst reflect.Type) error {
	return fmt.Errorf("%w: %v does not fit into %s", ErrOutOfRange, src.Interface(), dst)
}

func convertNumber(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	out := reflect.New(dst).Elem()

	switch {
	case isSigned(src.Kind()):
		i := src.Int()
		switch {
		case isSigned(dst.Kind()):
			if out.OverflowInt(i) {
				return reflect.Value{}, outOfRange(src, dst)
			}
			out.SetInt(i)
		case isUnsigned(dst.Kind()):
			if i < 0 || out.OverflowUint(uint64(i)) {
				return reflect.Value{}, outOfRange(src, dst)
			}
			out.SetUint(uint64(i))
		default:
			out.SetFloat(float64(i))
		}

	case isUnsigned(src.Kind()):
		u := src.Uint()
		switch {
		case isSigned(dst.Kind()):
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return reflect.Value{}, outOfRange(src, dst)
			}
			out.SetInt(int64(u))
		case isUnsigned(dst.Kind()):
			if out.OverflowUint(u) {
				return reflect.Value{}, outOfRange(src, dst)
			}
			out.SetUint(u)
		default:
			out.SetFloat(float64(u))
		}

	default:
		f := src.Float()
		switch {
		case isSigned(dst.Kind()):
			f = math.Trunc(f)
			if !utils.FloatFitsInt64(f) || out.OverflowInt(int64(f)) {
				return reflect.Value{}, outOfRange(src, dst)
			}
			out.SetInt(int64(f))
		case isUnsigned(dst.Kind()):
			f = math.Trunc(f)
			if !utils.FloatFitsUint64(f) || out.OverflowUint(uint64(f)) {
				return reflect.Value{}, outOfRange(src, dst)
			}
			out.SetUint(uint64(f))
		default:
			if !math.IsInf(f, 0) && !math.IsNaN(f) && out.OverflowFloat(f) {
				return reflect.Value{}, outOfRange(src, dst)
			}
			out.SetFloat(f)
		}
	}

	return out, nil
}

func formatNumber(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	var text string

	switch k := KindOf(src.Type()); {
	case k.IsSigned():
		text = strconv.FormatInt(src.Int(), 10)
	case k.IsUnsigned():
		text = strconv.FormatUint(src.Uint(), 10)
	default:
		text = strconv.FormatFloat(src.Float(), 'f', -1, k.Bits())
	}

	return reflect.ValueOf(text).Convert(dst), nil
}

func parseNumber(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	text := strings.TrimSpace(src.String())
	out := reflect.New(dst).Elem()

	switch k := KindOf(dst); {
	case k.IsSigned():
		i, err := strconv.ParseInt(text, 10, k.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetInt(i)
	case k.IsUnsigned():
		u, err := strconv.ParseUint(text, 10, k.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetUint(u)
	default:
		f, err := strconv.ParseFloat(text, k.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetFloat(f)
	}

	return out, nil
}

// 0, 1 - valid, other numbers is error
func numberToBool(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	var n float64
	if isSigned(src.Kind()) {
		n = float64(src.Int())
	} else {
		n = float64(src.Uint())
	}

	out := reflect.New(dst).Elem()
	switch n {
	default:
		return reflect.Value{}, fmt.Errorf("%w: only numbers 0 and 1 are allowed, got: %v", ErrNotBool, src.Interface())
	case 0:
		out.SetBool(false)
	case 1:
		out.SetBool(true)
	}

	return out, nil
}

func boolToNumber(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	one := reflect.ValueOf(0)
	if src.Bool() {
		one = reflect.ValueOf(1)
	}

	return convertNumber(one, dst)
}

func parseBool(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	out := reflect.New(dst).Elem()

	switch text := src.String(); strings.ToLower(strings.TrimSpace(text)) {
	default:
		return reflect.Value{}, fmt.Errorf("%w: only strings true/false, yes/no, on/off are allowed, got: %s", ErrNotBool, text)
	case "true", "yes", "on":
		out.SetBool(true)
	case "false", "no", "off":
		out.SetBool(false)
	}

	return out, nil
}

func formatBool(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	return reflect.ValueOf(strconv.FormatBool(src.Bool())).Convert(dst), nil
}

func parseTime(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(src.String()))
	if err != nil {
		return reflect.Value{}, err
	}

	return reflect.ValueOf(t), nil
}

func formatTime(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	t := src.Interface().(time.Time)
	return reflect.ValueOf(t.Format(time.RFC3339Nano)).Convert(dst), nil
}

func unixToTime(src reflect.Value, _ reflect.Type) (reflect.Value, error) {
	var seconds int64
	if isSigned(src.Kind()) {
		seconds = src.Int()
	} else {
		if src.Uint() > math.MaxInt64 {
			return reflect.Value{}, outOfRange(src, timeType)
		}
		seconds = int64(src.Uint())
	}

	return reflect.ValueOf(time.Unix(seconds, 0).UTC()), nil
}

func timeToUnix(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	t := src.Interface().(time.Time)
	return convertNumber(reflect.ValueOf(t.Unix()), dst)
}

func parseDuration(src reflect.Value, _ reflect.Type) (reflect.Value, error) {
	d, err := time.ParseDuration(strings.TrimSpace(src.String()))
	if err != nil {
		return reflect.Value{}, err
	}

	return reflect.ValueOf(d), nil
}

func formatDuration(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	return reflect.ValueOf(time.Duration(src.Int()).String()).Convert(dst), nil
}

func nanosToDuration(src reflect.Value, _ reflect.Type) (reflect.Value, error) {
	return convertNumber(src, durationType)
}

func durationToNanos(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	return convertNumber(reflect.ValueOf(src.Int()), dst)
}

func secondsToDuration(src reflect.Value, _ reflect.Type) (reflect.Value, error) {
	return convertNumber(reflect.ValueOf(src.Float()*float64(time.Second)), durationType)
}

func durationToSeconds(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	seconds := time.Duration(src.Int()).Seconds()
	return convertNumber(reflect.ValueOf(seconds), dst)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}

	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}

	return false
}
