package match

import (
	"slices"
	"strings"
	"unicode"
)

// noiseTokens are trailing tokens dropped before scoring: "OrderID" ranks close to "Order"
// and "PlacedAt" close to "Placed".
var noiseTokens = []string{"id", "ids", "at", "utc", "timestamp"}

// NormalizeIdent folds an identifier to lower case without separators, so "order_id",
// "orderId" and "OrderID" compare equal.
func NormalizeIdent(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		if !isSeparator(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}

	return sb.String()
}

// normalizeForScore is NormalizeIdent without a trailing noise token. An identifier made
// of a noise token only is kept whole.
func normalizeForScore(s string) string {
	tokens := Tokens(s)
	if n := len(tokens); n > 1 && slices.Contains(noiseTokens, tokens[n-1]) {
		tokens = tokens[:n-1]
	}

	return strings.Join(tokens, "")
}

// Tokens splits an identifier into lower case words at separators, lower to upper case
// transitions and the end of acronyms:
//
//	"OrderID"        -> order id
//	"XMLParser"      -> xml parser
//	"getHTTP_Result" -> get http result
func Tokens(s string) []string {
	var (
		tokens []string
		cur    []rune
	)

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		cur = append(cur, r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

func startsToken(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}

	prev := runes[i-1]
	if !unicode.IsUpper(prev) {
		return !isSeparator(prev)
	}

	// last capital of an acronym followed by a word
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
