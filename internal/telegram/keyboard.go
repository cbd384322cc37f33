package telegram

import "strings"

// KeyboardButton is one button of a persistent reply keyboard.
type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboard is the persistent bottom-menu markup.
type ReplyKeyboard struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

// Menu builds the bot's persistent bottom menu from its button labels.
func Menu(labels ...string) ReplyKeyboard {
	row := make([]KeyboardButton, 0, len(labels))
	for _, label := range labels {
		row = append(row, KeyboardButton{Text: label})
	}
	return ReplyKeyboard{
		Keyboard:       [][]KeyboardButton{row},
		ResizeKeyboard: true,
	}
}

// markdownV2Specials are the characters MarkdownV2 requires escaped.
const markdownV2Specials = `_*[]()~` + "`" + `>#+-=|{}.!`

// EscapeMarkdownV2 escapes text for Telegram's MarkdownV2 parse mode.
func EscapeMarkdownV2(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(markdownV2Specials, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
