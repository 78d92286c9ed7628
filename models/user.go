package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Roles recognized by the session layer. RoleAdmin satisfies every role
// check; delete, clear and JSON import are admin-only, spreadsheet import
// additionally accepts RoleSupervisor.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOfficer    = "officer"
)

// User holds the structure for the users collection in mongo. Password is
// a bcrypt hash and never serialized to JSON.
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Username  string             `json:"username" bson:"username"`
	Name      string             `json:"name" bson:"name"`
	Role      string             `json:"role" bson:"role"`
	Password  string             `json:"-" bson:"password"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// SessionUser is the subset of User carried in the session token and
// returned by the auth endpoints.
type SessionUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Session converts a stored user to its session representation.
func (u User) Session() SessionUser {
	return SessionUser{Username: u.Username, Name: u.Name, Role: u.Role}
}

// CanDelete reports whether the user's role may delete roster records.
func (s SessionUser) CanDelete() bool {
	return s.Role == RoleAdmin
}

// HasRole reports whether the user holds the required role, with admin
// satisfying every requirement.
func (s SessionUser) HasRole(required string) bool {
	return s.Role == required || s.Role == RoleAdmin
}
