package models

import "github.com/google/uuid"

// Role is the privilege level of a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// UserState is the lifecycle state of an account.
type UserState string

const (
	UserStateActive   UserState = "active"
	UserStateInactive UserState = "inactive"
	UserStateDeleted  UserState = "deleted"
)

// Visibility controls who may contact a user without being friends.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// User is a record from the user directory.
type User struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	FirstName  string     `db:"firstname" json:"firstname"`
	LastName   string     `db:"lastname" json:"lastname"`
	Email      string     `db:"email" json:"email"`
	Role       Role       `db:"role" json:"role"`
	State      UserState  `db:"state" json:"state"`
	Visibility Visibility `db:"visibility" json:"visibility"`
}

// PublicProfile is the part of a user that other users may see.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Role      Role      `json:"role"`
}

// HasRole reports whether the user holds any of roles.
func (u User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// CanViewFriendshipLog reports whether the user may read every friendship record.
func (u User) CanViewFriendshipLog() bool {
	return u.HasRole(RoleAdmin, RoleModerator)
}

func (u User) IsPublic() bool {
	return u.Visibility == VisibilityPublic
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}
