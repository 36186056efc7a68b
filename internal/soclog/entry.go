package soclog

// Entry is one recorded line of a game event log: a message with its
// audience, or a comment.
type Entry struct {
	// Message is the decoded message, nil for comment-only entries.
	Message Message

	// PN is the audience player number for server messages (-1 when sent
	// to all members), or the sending player for client messages. May be
	// game.PNObserver or game.PNReplyToUndetermined for non-seated senders.
	PN int

	// ExcludedPN is non-nil when the message went to all members except
	// these player numbers.
	ExcludedPN []int

	// FromClient is true for messages a client sent to the server.
	FromClient bool

	// TimeElapsedMS is milliseconds since the game started, -1 if the
	// log carries no timestamps.
	TimeElapsedMS int

	// Comment holds the text of a comment entry, without the leading "#".
	Comment string
}

// NewEntry makes a server-to-all entry without a timestamp.
func NewEntry(msg Message) Entry {
	return Entry{Message: msg, PN: -1, TimeElapsedMS: -1}
}

// NewEntryToPlayer makes a server entry addressed to one player.
func NewEntryToPlayer(msg Message, pn int) Entry {
	return Entry{Message: msg, PN: pn, TimeElapsedMS: -1}
}

// NewEntryFromClient makes an entry for a message a client sent.
func NewEntryFromClient(msg Message, pn int) Entry {
	return Entry{Message: msg, PN: pn, FromClient: true, TimeElapsedMS: -1}
}

// IsComment reports whether the entry is a comment line.
func (e Entry) IsComment() bool {
	return e.Message == nil
}

// IsToAll reports whether the entry is a server message sent to all game
// members with no exclusions.
func (e Entry) IsToAll() bool {
	return !e.FromClient && e.PN == -1 && e.ExcludedPN == nil && e.Message != nil
}

// MessageType returns the entry's message type, or MsgUnknown for comments.
func (e Entry) MessageType() MessageType {
	if e.Message == nil {
		return MsgUnknown
	}
	return e.Message.Type()
}
