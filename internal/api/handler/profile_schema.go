package handler

import "github.com/ecsetu/portal/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type updateProfileRequest struct {
	ID             string  `json:"id"             validate:"required"`
	Name           *string `json:"name"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	Role           *string `json:"role"           validate:"omitempty,role"`
	Location       *string `json:"location"`
	Phone          *string `json:"phone"`
	Description    *string `json:"description"`
	ProfilePicture *string `json:"profilePicture"`
}

func (r updateProfileRequest) patch() domain.UserPatch {
	p := domain.UserPatch{
		Name:           r.Name,
		Email:          r.Email,
		Location:       r.Location,
		Phone:          r.Phone,
		Description:    r.Description,
		ProfilePicture: r.ProfilePicture,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

type createUserRequest struct {
	Name        string `json:"name"        validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Role        string `json:"role"        validate:"omitempty,role"`
	Location    string `json:"location"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

type createUserResponse struct {
	User             domain.User `json:"user"`
	WelcomeEmailSent bool        `json:"welcomeEmailSent"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
