package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"leadtracker/internal/database"
	"leadtracker/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock of the domain.LeadRepository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, in models.LeadInput) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]models.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lead), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id int64) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, in models.LeadInput) (int64, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockHealth struct {
	mock.Mock
}

func (m *MockHealth) CheckHealth(ctx context.Context) models.HealthStatus {
	return m.Called(ctx).Get(0).(models.HealthStatus)
}

func validInput() models.LeadInput {
	return models.LeadInput{
		FullName: "Carlos Ruiz",
		Email:    "carlos@example.com",
		Phone:    "600123123",
		Interest: "Consultoría IT",
	}
}

func newService(repo *MockRepository) *LeadService {
	logger := zerolog.Nop()
	return NewLeadService(repo, new(MockHealth), nil, &logger)
}

func TestLeadService_SubmitTrims(t *testing.T) {
	repo := new(MockRepository)
	s := newService(repo)

	repo.On("Create", mock.Anything, validInput()).Return(int64(7), nil).Once()

	in := validInput()
	in.FullName = "  Carlos Ruiz "
	in.Email = "carlos@example.com\t"
	id, err := s.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	repo.AssertExpectations(t)
}

func TestLeadService_SubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *models.LeadInput)
		field  string
	}{
		{"missing name", func(in *models.LeadInput) { in.FullName = "   " }, "full_name"},
		{"missing email", func(in *models.LeadInput) { in.Email = "" }, "email"},
		{"missing interest", func(in *models.LeadInput) { in.Interest = "" }, "interest"},
		{"bad email", func(in *models.LeadInput) { in.Email = "not-an-email" }, "email"},
		{"long name", func(in *models.LeadInput) { in.FullName = strings.Repeat("a", 101) }, "full_name"},
		{"long phone", func(in *models.LeadInput) { in.Phone = strings.Repeat("9", 21) }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			s := newService(repo)

			in := validInput()
			tt.mutate(&in)
			_, err := s.Submit(context.Background(), in)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestValidate_CountsRunes(t *testing.T) {
	in := validInput()
	in.FullName = strings.Repeat("ñ", models.MaxFullNameLen)
	assert.NoError(t, Validate(in))

	in.Phone = ""
	assert.NoError(t, Validate(in), "phone is optional")
}

func TestLeadService_SubmitDuplicate(t *testing.T) {
	repo := new(MockRepository)
	s := newService(repo)

	repo.On("Create", mock.Anything, validInput()).Return(int64(0), database.ErrDuplicateEmail)

	_, err := s.Submit(context.Background(), validInput())
	assert.ErrorIs(t, err, database.ErrDuplicateEmail)
}

func TestLeadService_Edit(t *testing.T) {
	repo := new(MockRepository)
	s := newService(repo)
	ctx := context.Background()

	repo.On("Update", mock.Anything, int64(1), validInput()).Return(int64(1), nil).Once()
	assert.NoError(t, s.Edit(ctx, 1, validInput()))

	repo.On("Update", mock.Anything, int64(99), validInput()).Return(int64(0), nil).Once()
	assert.NoError(t, s.Edit(ctx, 99, validInput()), "missing id is not an error")

	bad := validInput()
	bad.Email = ""
	var ve *ValidationError
	assert.ErrorAs(t, s.Edit(ctx, 1, bad), &ve)

	repo.AssertExpectations(t)
}

func TestLeadService_Remove(t *testing.T) {
	repo := new(MockRepository)
	s := newService(repo)
	ctx := context.Background()

	repo.On("Delete", mock.Anything, int64(3)).Return(int64(1), nil).Once()
	repo.On("Delete", mock.Anything, int64(4)).Return(int64(0), nil).Once()
	repo.On("Delete", mock.Anything, int64(5)).Return(int64(0), database.ErrConnection).Once()

	assert.NoError(t, s.Remove(ctx, 3))
	assert.NoError(t, s.Remove(ctx, 4))
	assert.ErrorIs(t, s.Remove(ctx, 5), database.ErrConnection)
	repo.AssertExpectations(t)
}

func TestLeadService_ListAndGet(t *testing.T) {
	repo := new(MockRepository)
	s := newService(repo)
	ctx := context.Background()

	leads := []models.Lead{{ID: 2, Email: "b@example.com"}, {ID: 1, Email: "a@example.com"}}
	repo.On("List", mock.Anything).Return(leads, nil).Once()
	repo.On("Get", mock.Anything, int64(2)).Return(&leads[0], nil).Once()
	repo.On("Get", mock.Anything, int64(9)).Return(nil, database.ErrNotFound).Once()

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, leads, got)

	lead, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", lead.Email)

	_, err = s.Get(ctx, 9)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLeadService_Health(t *testing.T) {
	health := new(MockHealth)
	logger := zerolog.Nop()
	s := NewLeadService(new(MockRepository), health, nil, &logger)

	want := models.HealthStatus{Reachable: true, Version: "8.0.36", Engine: models.EngineMySQL}
	health.On("CheckHealth", mock.Anything).Return(want)

	assert.Equal(t, want, s.Health(context.Background()))
}

func TestLeadService_Interests(t *testing.T) {
	logger := zerolog.Nop()
	s := NewLeadService(new(MockRepository), new(MockHealth), []string{"SEO"}, &logger)

	got := s.Interests()
	assert.Equal(t, []string{"SEO"}, got)

	got[0] = "changed"
	assert.Equal(t, []string{"SEO"}, s.Interests())

	assert.Equal(t, models.DefaultInterests, newService(new(MockRepository)).Interests())
}

func TestResultOf(t *testing.T) {
	assert.Equal(t, "success", resultOf(nil))
	assert.Equal(t, "duplicate", resultOf(database.ErrDuplicateEmail))
	assert.Equal(t, "not_found", resultOf(database.ErrNotFound))
	assert.Equal(t, "unavailable", resultOf(errors.Join(database.ErrConnection, errors.New("dial"))))
	assert.Equal(t, "error", resultOf(&database.QueryError{Op: "list leads", Err: errors.New("boom")}))
}
