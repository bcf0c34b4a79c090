// Package repository implements the MySQL storage of the box office.
// The sentinel errors below are shared with the in-memory store so that
// handlers can tell failure scenarios apart regardless of the backend.
// For example, ErrTicketNotFound is translated into an HTTP 404 by the
// refund and receipt endpoints.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrEventNotFound is returned when no Event row has the requested id.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketNotFound is returned when no Ticket row has the requested id.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrUserNotFound is returned when no staff account has the username.
var ErrUserNotFound = errors.New("user not found")

// mysqlDuplicateEntry is the server error number for a unique key clash.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate key error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isPrimaryKeyClash reports whether err is a duplicate on the primary
// key rather than on a secondary unique index.
func isPrimaryKeyClash(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry && strings.Contains(me.Message, "PRIMARY")
}
