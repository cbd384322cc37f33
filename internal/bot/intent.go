package bot

import "strings"

// Menu button labels. Matching is case-insensitive on the whole text.
const (
	MenuNewsLabel     = "📰 Latest 2w News"
	MenuHelpLabel     = "🆘 Help"
	MenuDeepDiveLabel = "🤔 Deep Dive"
)

// freeformMarker prefixes a message that goes straight to chat
// generation instead of ticker handling.
const freeformMarker = "!"

type IntentKind int

const (
	IntentTickerLookup IntentKind = iota
	IntentMenuNews
	IntentMenuHelp
	IntentMenuDeepDive
	IntentFreeformChat
	IntentUnrecognized
)

// Intent is the classification of one inbound message.
type Intent struct {
	Kind   IntentKind
	Symbol string // set for IntentTickerLookup
	Text   string // raw text for IntentFreeformChat / IntentUnrecognized
}

// Route classifies a message. A recognized ticker updates the session's
// last symbol as a side effect; nothing else mutates the session here.
func Route(text string, session *Session) Intent {
	raw := strings.TrimSpace(text)
	upper := strings.ToUpper(raw)

	switch upper {
	case strings.ToUpper(MenuNewsLabel):
		return Intent{Kind: IntentMenuNews}
	case strings.ToUpper(MenuHelpLabel):
		return Intent{Kind: IntentMenuHelp}
	case strings.ToUpper(MenuDeepDiveLabel):
		return Intent{Kind: IntentMenuDeepDive}
	}

	if isTicker(upper) {
		session.SetLastSymbol(upper)
		return Intent{Kind: IntentTickerLookup, Symbol: upper}
	}

	if strings.HasPrefix(raw, freeformMarker) {
		return Intent{Kind: IntentFreeformChat, Text: raw}
	}

	return Intent{Kind: IntentUnrecognized, Text: raw}
}

// isTicker reports whether s (already upper-cased) looks like a ticker:
// one to five alphabetic characters, nothing else.
func isTicker(s string) bool {
	if len(s) < 1 || len(s) > 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
