package soclog

// EventLog is an ordered record of the protocol messages seen during one
// game, either the server's full record or the subset one client received.
type EventLog struct {
	GameName string
	Version  int
	// OptsStr is the game-option string from NewGameWithOptions, if any.
	OptsStr string

	// IsAtClient is true when the log holds only what one client saw.
	IsAtClient bool
	// AtClientPN is that client's player number, -1 for full logs.
	AtClientPN int

	// HasTimestamps is true when entries carry elapsed-time values.
	HasTimestamps bool

	Entries []Entry
}

// NewEventLog makes an empty full-mode log.
func NewEventLog(gameName string, version int) *EventLog {
	return &EventLog{GameName: gameName, Version: version, AtClientPN: -1}
}

// Add appends entries to the log.
func (l *EventLog) Add(entries ...Entry) {
	l.Entries = append(l.Entries, entries...)
}

// FilterForClient returns a copy holding only the entries player pn's client
// received: server messages to all members, server messages addressed to pn,
// and excluded-audience variants whose exclusion list does not name pn.
// Client-sent entries and observer traffic are dropped. The copy is marked
// as an at-client log.
func (l *EventLog) FilterForClient(pn int) *EventLog {
	out := &EventLog{
		GameName:      l.GameName,
		Version:       l.Version,
		OptsStr:       l.OptsStr,
		IsAtClient:    true,
		AtClientPN:    pn,
		HasTimestamps: l.HasTimestamps,
	}
	for _, e := range l.Entries {
		if e.IsComment() {
			out.Entries = append(out.Entries, e)
			continue
		}
		if e.FromClient {
			continue
		}
		if e.ExcludedPN != nil {
			excluded := false
			for _, x := range e.ExcludedPN {
				if x == pn {
					excluded = true
					break
				}
			}
			if !excluded {
				out.Entries = append(out.Entries, e)
			}
			continue
		}
		if e.PN == -1 || e.PN == pn {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}
