package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/internal/models"
)

type mockUserRepo struct {
	users []models.User
}

func (m *mockUserRepo) List() []models.User {
	return m.users
}

func (m *mockUserRepo) FindByID(id int64) (*models.User, bool) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], true
		}
	}
	return nil, false
}

func (m *mockUserRepo) FindByEmail(email string) (*models.User, bool) {
	for i := range m.users {
		if strings.EqualFold(m.users[i].Email, email) {
			return &m.users[i], true
		}
	}
	return nil, false
}

func (m *mockUserRepo) FindByName(name string) (*models.User, bool) {
	for i := range m.users {
		if strings.EqualFold(m.users[i].Name, name) {
			return &m.users[i], true
		}
	}
	return nil, false
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	var max int64
	for _, u := range m.users {
		if u.ID > max {
			max = u.ID
		}
	}
	user.ID = max + 1
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user models.User) error {
	for i := range m.users {
		if m.users[i].ID == user.ID {
			m.users[i] = user
			return nil
		}
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestFindOrCreateUserIdempotent(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewDirectoryService(repo, "example.com", nil, nil)
	ctx := context.Background()

	first, err := svc.FindOrCreateUser(ctx, models.UserInfo{Name: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := svc.FindOrCreateUser(ctx, models.UserInfo{Name: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, *first, *second)
	assert.Len(t, repo.users, 1)
}

func TestFindOrCreateUserMatchOrder(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{
		{ID: 1, Name: "Jane Doe", Email: "jane@corp.example"},
		{ID: 2, Name: "Someone Else", Email: "shared@corp.example"},
	}}
	svc := NewDirectoryService(repo, "example.com", nil, nil)
	ctx := context.Background()

	// Email match wins over name match.
	id, err := svc.FindOrCreateUser(ctx, models.UserInfo{Name: "Jane Doe", Email: "SHARED@corp.example"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), *id)

	// Name match is case-insensitive.
	id, err = svc.FindOrCreateUser(ctx, models.UserInfo{Name: "jane doe"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), *id)
}

func TestFindOrCreateUserEmptyName(t *testing.T) {
	svc := NewDirectoryService(&mockUserRepo{}, "example.com", nil, nil)
	id, err := svc.FindOrCreateUser(context.Background(), models.UserInfo{})
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestFindOrCreateUserDefaultEmail(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewDirectoryService(repo, "corp.example", nil, nil)

	_, err := svc.FindOrCreateUser(context.Background(), models.UserInfo{Name: "Jane  Q  Doe"})
	require.NoError(t, err)
	require.Len(t, repo.users, 1)
	assert.Equal(t, "jane.q.doe@corp.example", repo.users[0].Email)
	assert.Equal(t, "Imported User", repo.users[0].Title)
}

func TestFormatUser(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{{ID: 4, Name: "Jane", Email: "jane@example.com"}}}
	svc := NewDirectoryService(repo, "example.com", nil, nil)

	known := int64(4)
	missing := int64(99)
	assert.Equal(t, "Jane <jane@example.com>", svc.FormatUser(&known))
	assert.Equal(t, "99", svc.FormatUser(&missing))
	assert.Equal(t, "", svc.FormatUser(nil))
}

func TestDirectoryCreateValidation(t *testing.T) {
	svc := NewDirectoryService(&mockUserRepo{}, "example.com", nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{Name: "", Email: "x@example.com"})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), CreateUserRequest{Name: "Jane", Email: "not-an-email"})
	assert.Error(t, err)

	user, err := svc.Create(context.Background(), CreateUserRequest{Name: "Jane", Title: "Auditor"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestDirectoryUpdate(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{
		{ID: 1, Name: "Jane Doe", Title: "Imported User", Email: "jane.doe@corp.example"},
	}}
	svc := NewDirectoryService(repo, "corp.example", nil, nil)

	user, err := svc.Update(context.Background(), 1, CreateUserRequest{Name: "Jane Q Doe", Title: "Auditor"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Auditor", user.Title)
	assert.Equal(t, "jane.q.doe@corp.example", user.Email)

	_, err = svc.Update(context.Background(), 99, CreateUserRequest{Name: "Nobody"})
	assert.Error(t, err)
}
