package bot

// ACL is the allowed-chat list. An empty list allows everyone; denied
// chats get no reply at all, so the bot's existence is not leaked.
type ACL struct {
	allowed map[int64]struct{}
}

func NewACL(chatIDs []int64) *ACL {
	if len(chatIDs) == 0 {
		return &ACL{}
	}
	allowed := make(map[int64]struct{}, len(chatIDs))
	for _, id := range chatIDs {
		allowed[id] = struct{}{}
	}
	return &ACL{allowed: allowed}
}

func (a *ACL) Allows(chatID int64) bool {
	if a.allowed == nil {
		return true
	}
	_, ok := a.allowed[chatID]
	return ok
}
