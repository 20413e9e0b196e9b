package services

import (
	"context"

	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
)

type AdminService interface {
	ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error)
}

type adminService struct {
	userRepo repositories.UserRepository
}

func NewAdminService(userRepo repositories.UserRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

func (s *adminService) ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error) {
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return models.UserListResponse{}, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return models.UserListResponse{
		Users:      users,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}
