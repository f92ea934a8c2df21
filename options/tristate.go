package options

// Tristate is a flag that may be left unset so that the call site picks the value.
type Tristate int8

const (
	Unset Tristate = iota
	On
	Off
)

// Of converts a plain bool into a set Tristate.
func Of(v bool) Tristate {
	if v {
		return On
	}

	return Off
}

// IsSet reports whether the flag carries an explicit value.
func (t Tristate) IsSet() bool { return t != Unset }

// Or resolves the flag, using def when it is unset.
func (t Tristate) Or(def bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return def
	}
}

func (t Tristate) String() string {
	switch t {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "unset"
	}
}
