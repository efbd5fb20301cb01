package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/jordanhale/storefront-backend/pkg/db/models"
)

// UserDTO is the account read model returned to controllers. The password
// hash never leaves this package.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult carries the minted access token alongside the account.
type LoginResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func toUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}
