package usecase

import (
	"fmt"
	"strings"
)

// ChoiceKind identifies which question an inline button answers.
type ChoiceKind int

const (
	ChoicePai ChoiceKind = iota + 1
	ChoiceCard
	ChoiceBank
)

func (k ChoiceKind) String() string {
	switch k {
	case ChoicePai:
		return "pai"
	case ChoiceCard:
		return "cc"
	case ChoiceBank:
		return "bank"
	default:
		return "unknown"
	}
}

// Choice is a decoded callback tag such as "pai_sim" or "bank_Itau".
type Choice struct {
	Kind  ChoiceKind
	Value string
}

// Yes reports whether a binary choice was answered with "sim".
func (c Choice) Yes() bool {
	return c.Value == "sim"
}

var choicePrefixes = []struct {
	prefix string
	kind   ChoiceKind
}{
	{"pai_", ChoicePai},
	{"cc_", ChoiceCard},
	{"bank_", ChoiceBank},
}

// ParseChoice decodes a callback tag once at the boundary.
func ParseChoice(raw string) (Choice, error) {
	for _, p := range choicePrefixes {
		if value, ok := strings.CutPrefix(raw, p.prefix); ok {
			return Choice{Kind: p.kind, Value: value}, nil
		}
	}
	return Choice{}, fmt.Errorf("usecase: unknown choice tag %q", raw)
}

func (c Choice) tag() string {
	return c.Kind.String() + "_" + c.Value
}
