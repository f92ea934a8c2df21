package options

// CategoryEnum is a bitmask of built-in scalar conversion families a schema allows.
type CategoryEnum int

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // int, uint, float without precision loss
	CategoryUnsafeNumber                          // int, uint, float with precision loss, range checked at runtime
	CategoryTextNumber                            // int, uint, float <-> string: textual number representation
	CategoryNumericBool                           // int <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                           // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                              // string(RFC3339Nano) <-> time.Time: textual date and time representation
	CategoryTimestamp                             // int(Unix seconds) <-> time.Time: Unix timestamp representation
	CategoryDuration                              // string(2h45m) <-> time.Duration: textual duration representation
	CategoryNanoseconds                           // int(nanoseconds) <-> time.Duration: numerical (integer) duration representation
	CategorySeconds                               // float(seconds) <-> time.Duration: numerical (floating-point) duration representation
	CategoryEnumString                            // string <-> enum: member name or underlying text of an enum type
	CategorySafeArray                             // sequence -> array: source length equals the array length
	CategoryUnsafeArray                           // sequence -> array: longer sources are cut, shorter ones leave zero values

	CategoryAll  CategoryEnum = (1 << iota) - 1 //all categories combined
	CategoryNone              = 0               // no categories selected
)

// Has reports whether every category of other is enabled in c.
func (c CategoryEnum) Has(other CategoryEnum) bool {
	return c&other == other
}

// CategoryText groups the textual representations, tried only after every structural strategy.
const CategoryText = CategoryTextNumber | CategoryTextualBool | CategoryDatetime | CategoryDuration
