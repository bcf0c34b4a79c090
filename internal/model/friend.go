package model

// Friend represents a row in the `Friends_Of_Lancaster` table: a
// member of the venue's supporters programme.  Members are kept apart
// from Customer records and are read-only to the box office.
type Friend struct {
	ID    int    // Friends_Of_Lancaster.FriendID
	Name  string // Friends_Of_Lancaster.Name
	Email string // Friends_Of_Lancaster.Email
	Phone string // Friends_Of_Lancaster.PhoneNumber, may be empty
}
