package model

// Staff roles stored in User.Role.
const (
	RoleStaff   = "STAFF"
	RoleManager = "MANAGER"
	RoleDeputy  = "DEPUTY"
)

// User represents a box-office staff account as stored in the `User`
// table.  Customers never log in; only staff hold accounts.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	PasswordHash – bcrypt hashed password.
//	Role         – STAFF, MANAGER or DEPUTY.
//	IsActive     – whether the account may log in.
type User struct {
	ID           uint64 // User.User_ID
	Username     string // User.Username
	PasswordHash string // User.Password_Hash
	Role         string // User.Role
	IsActive     bool   // User.Is_Active
}
