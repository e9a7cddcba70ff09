package models

import "time"

// Role tags which variant a user record belongs to.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

func (r Role) Valid() bool { return r == RoleStudent || r == RoleFaculty }

func (r Role) String() string { return string(r) }

// Candidate is registration input. A nil field was absent from the request.
type Candidate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

// User is a persisted record. Password is only set on the way into a store;
// stores keep PasswordHash.
type User struct {
	ID           string    `json:"id"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the part of a User that is safe to hand back to a caller.
type Principal struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (u User) Principal() Principal {
	return Principal{
		ID:        u.ID,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// User builds the record a store saves. Call only on a validated candidate.
func (c Candidate) User(role Role) User {
	return User{
		Role:      role,
		FirstName: deref(c.FirstName),
		LastName:  deref(c.LastName),
		Email:     deref(c.Email),
		Password:  deref(c.Password),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
