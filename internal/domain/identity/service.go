package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/recordgate/recordgate/internal/access"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	for _, r := range u.Roles {
		if _, ok := access.ParseRole(r); !ok {
			return fmt.Errorf("unknown role %q", r)
		}
	}
	if u.Department != nil {
		if _, ok := access.ParseDepartment(*u.Department); !ok {
			return fmt.Errorf("unknown department %q", *u.Department)
		}
	}
	u.Active = true
	return s.repo.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	for _, r := range u.Roles {
		if _, ok := access.ParseRole(r); !ok {
			return fmt.Errorf("unknown role %q", r)
		}
	}
	return s.repo.Update(ctx, u)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}
