package converter

import (
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
	"medilink/pkg/session"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	role := user.Role.RoleName
	if role == "" {
		role = entity.RoleName(user.RoleID)
	}

	return &dto.UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		Role:             role,
		EmailConfirmedAt: user.EmailConfirmedAt,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

// UserToSessionUser projects the fields a client needs for routing decisions.
func UserToSessionUser(user *entity.User) *session.User {
	if user == nil {
		return nil
	}
	return &session.User{
		ID:               user.ID,
		Email:            user.Email,
		Role:             entity.RoleName(user.RoleID),
		EmailConfirmedAt: user.EmailConfirmedAt,
	}
}
