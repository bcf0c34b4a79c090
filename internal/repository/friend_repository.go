package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// ErrFriendNotFound is returned when no member has the requested id.
var ErrFriendNotFound = errors.New("friend not found")

const friendColumns = `FriendID, Name, Email, COALESCE(PhoneNumber, '')`

// FriendRepo reads the Friends of Lancaster membership list.
type FriendRepo struct {
	db *sql.DB
}

// NewFriendRepo returns a new FriendRepo bound to the given database.
func NewFriendRepo(db *sql.DB) *FriendRepo { return &FriendRepo{db: db} }

// ListFriends returns every member ordered by name.
func (r *FriendRepo) ListFriends(ctx context.Context) ([]model.Friend, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+friendColumns+` FROM Friends_Of_Lancaster ORDER BY Name, FriendID`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Friend
	for rows.Next() {
		var f model.Friend
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Phone); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetFriend returns the member with id or ErrFriendNotFound.
func (r *FriendRepo) GetFriend(ctx context.Context, id int) (model.Friend, error) {
	var f model.Friend
	err := r.db.QueryRowContext(ctx, `SELECT `+friendColumns+` FROM Friends_Of_Lancaster WHERE FriendID = ?`, id).
		Scan(&f.ID, &f.Name, &f.Email, &f.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Friend{}, ErrFriendNotFound
	}
	return f, err
}
