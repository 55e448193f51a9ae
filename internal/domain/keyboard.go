package domain

// Button is an inline keyboard button carrying a choice tag.
type Button struct {
	Text     string
	ChoiceID string
}

// Keyboard is attached to an outbound message. Either Inline or Reply is set.
type Keyboard struct {
	Inline [][]Button
	Reply  [][]string
}

// InlineKeyboard builds an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Inline: rows}
}

// ReplyKeyboard groups options into rows of at most perRow entries.
func ReplyKeyboard(options []string, perRow int) *Keyboard {
	if perRow <= 0 {
		perRow = 1
	}
	rows := make([][]string, 0, (len(options)+perRow-1)/perRow)
	for i := 0; i < len(options); i += perRow {
		end := min(i+perRow, len(options))
		row := make([]string, end-i)
		copy(row, options[i:end])
		rows = append(rows, row)
	}
	return &Keyboard{Reply: rows}
}
