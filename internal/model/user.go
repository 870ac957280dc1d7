package model

import "time"

// RoleAdmin is the only role the service grants. It unlocks slot blocking and
// booking listings.
const RoleAdmin = "ADMIN"

// User represents a staff account as stored in the `users` table. Roles are
// loaded from `user_roles`; an account may hold several, though only ADMIN is
// used today.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Roles        – role names granted in user_roles.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Roles        []string  // user_roles.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
