package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: map[uuid.UUID]*User{}}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = false
	return nil
}

func str(s string) *string { return &s }

func TestCreateUserValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		user User
	}{
		{"missing username", User{Email: "a@clinic.test", Roles: []string{"NURSE"}}},
		{"missing email", User{Username: "amy", Roles: []string{"NURSE"}}},
		{"unknown role", User{Username: "amy", Email: "a@clinic.test", Roles: []string{"SORCERER"}}},
		{"unknown department", User{Username: "amy", Email: "a@clinic.test",
			Roles: []string{"NURSE"}, Department: str("CAFETERIA")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			if err := svc.CreateUser(ctx, &u); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateUserActivatesAndStores(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u := &User{
		Username:   "dr-house",
		Email:      "house@clinic.test",
		FullName:   "Greg House",
		Roles:      []string{"PHYSICIAN", "SPECIALIST"},
		Department: str("RADIOLOGY"),
	}
	if err := svc.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !u.Active {
		t.Error("new user should be active")
	}

	got, err := svc.GetByUsername(ctx, "dr-house")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("lookup returned wrong user")
	}
}

func TestDeactivateUser(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u := &User{Username: "amy", Email: "a@clinic.test", Roles: []string{"NURSE"}}
	if err := svc.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := svc.DeactivateUser(ctx, u.ID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	got, err := svc.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Active {
		t.Error("user still active after deactivation")
	}

	if err := svc.DeactivateUser(ctx, uuid.New()); err == nil {
		t.Error("expected error for unknown user")
	}
}
