package session

// Status is the state of a reservation session.
type Status int

const (
	StatusEmpty Status = iota + 1
	StatusSelecting
	StatusFull
	StatusCommitting
	StatusCommitted
	StatusExpired
	StatusAborted
)

var statusNames = map[Status]string{
	StatusEmpty:      "EMPTY",
	StatusSelecting:  "SELECTING",
	StatusFull:       "FULL",
	StatusCommitting: "COMMITTING",
	StatusCommitted:  "COMMITTED",
	StatusExpired:    "EXPIRED",
	StatusAborted:    "ABORTED",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// MarshalText renders the status name in JSON.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCommitted || s == StatusExpired || s == StatusAborted
}
