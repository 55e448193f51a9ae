package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseDescription splits "description, amount" on the first comma. The amount
// is returned verbatim so "-150,00" keeps its decimal comma.
func ParseDescription(raw string) (name, amount string, ok bool) {
	name, amount, found := strings.Cut(raw, ",")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	amount = strings.TrimSpace(amount)
	if name == "" || amount == "" {
		return "", "", false
	}
	return name, amount, true
}

// Callback tags are ASCII, so "Itau" arrives without its accent.
var canonicalBanks = []string{"BB", "Itaú", "XP", "Infinite"}

var bankByKey = func() map[string]string {
	m := make(map[string]string, len(canonicalBanks))
	for _, b := range canonicalBanks {
		m[bankKey(b)] = b
	}
	return m
}()

// NormalizeBank maps any accent or case variant of a known bank to its
// canonical spelling. Unknown names are returned trimmed.
func NormalizeBank(raw string) string {
	raw = strings.TrimSpace(raw)
	if b, ok := bankByKey[bankKey(raw)]; ok {
		return b
	}
	return raw
}

func bankKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
