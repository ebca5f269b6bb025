package models

import "time"

// User is the stored account record.
type User struct {
	ID              string
	UserName        string
	NormalizedEmail string
	PasswordHash    string
	Name            string
	CreatedAt       time.Time
}

// Profile projects the fields safe to hand back to callers.
func (u *User) Profile() *UserProfile {
	if u == nil {
		return nil
	}
	return &UserProfile{ID: u.ID, UserName: u.UserName, Name: u.Name}
}

type UserProfile struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
	Name     string `json:"name"`
}

type Role struct {
	ID   int64
	Name string
}
