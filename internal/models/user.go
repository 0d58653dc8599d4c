package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleAdmin = "admin"

	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User is the account view of a users document: the fields the API reads to
// authorize a caller. Profile fields live only in the stored document.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role,omitempty" json:"role,omitempty"` // "admin" or empty
}

// IsAdmin reports whether u holds the administrator role. A nil user is not an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ProfileFields are copied from a PUT /users body onto the matched user.
var ProfileFields = []string{"name", "email", "photoURL", "bloodGroup", "division", "district", "upazila"}
