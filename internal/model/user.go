package model

import "time"

/*
User is an account of the auth subsystem. Every other entity references it.

Username: unique login and the first path segment of profile and post URLs
PasswordHash: bcrypt hash, never rendered
DateJoined: time the account was created

Deleting a user removes its posts, comments and follow edges.
*/
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:150;uniqueIndex;not null"`
	FirstName    string    `gorm:"size:150"`
	LastName     string    `gorm:"size:150"`
	Email        string    `gorm:"size:254"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DateJoined   time.Time `gorm:"autoCreateTime;<-:create"`
}

// FullName falls back to the username when no name was given.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

func (u User) String() string { return u.Username }
