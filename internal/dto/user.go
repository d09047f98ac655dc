package dto

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"max=255"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Active   *bool  `json:"active"`
}

// UpdateUserRequest patches the mutable user fields; nil fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"fullName" validate:"omitempty,max=255"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}
