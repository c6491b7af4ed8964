package domain

import "time"

// User is the profile record shared between the session container and the
// profile backend. JSON keys follow the snapshot wire format.
type User struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           Role   `json:"role,omitempty"`
	Location       string `json:"location,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Description    string `json:"description,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// DefaultUser returns the anonymous placeholder record used before login and
// after logout.
func DefaultUser() User {
	return User{
		ID:    "",
		Name:  "Guest",
		Email: "guest@example.com",
		Role:  RoleEngineer,
	}
}

// UserPatch is a partial user record. A nil field means "not supplied".
type UserPatch struct {
	ID             *string `json:"id,omitempty"`
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Role           *Role   `json:"role,omitempty"`
	Location       *string `json:"location,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Description    *string `json:"description,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// Apply returns a copy of u with every supplied field of p written over it.
// A supplied role outside the closed set is ignored.
func (u User) Apply(p UserPatch) User {
	if p.ID != nil {
		u.ID = *p.ID
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil && p.Role.Valid() {
		u.Role = *p.Role
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	return u
}

// WithoutID returns p with the identifier cleared.
func (p UserPatch) WithoutID() UserPatch {
	p.ID = nil
	return p
}

// IsEmpty reports whether no field is supplied.
func (p UserPatch) IsEmpty() bool {
	return p == UserPatch{}
}

// PatchFrom builds a patch that supplies every field of u, skipping empty
// optional strings.
func PatchFrom(u User) UserPatch {
	p := UserPatch{
		Name:  &u.Name,
		Email: &u.Email,
	}
	if u.ID != "" {
		p.ID = &u.ID
	}
	if u.Role.Valid() {
		p.Role = &u.Role
	}
	if u.Location != "" {
		p.Location = &u.Location
	}
	if u.Phone != "" {
		p.Phone = &u.Phone
	}
	if u.Description != "" {
		p.Description = &u.Description
	}
	if u.ProfilePicture != "" {
		p.ProfilePicture = &u.ProfilePicture
	}
	return p
}

// Account is the backend's stored view of a user.
type Account struct {
	User
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
