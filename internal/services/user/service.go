package user

import (
	"errors"

	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	GetByID(id uint) (*models.User, error)
	Create(input *models.CreateUserInput) (*models.User, error)
	Update(user *models.User) error
	List(page, limit int) ([]*models.User, int64, error)
}

type service struct {
	repo repositories.UserRepository
}

func NewService(repo repositories.UserRepository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetByID(id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *service) Create(input *models.CreateUserInput) (*models.User, error) {
	v := validation.New()
	v.Required("name", input.Name)
	v.Email("email", input.Email)
	v.Password("password", input.Password)
	if !v.Valid() {
		for _, msg := range v.Errors {
			return nil, errors.New(msg)
		}
	}

	role := input.Role
	if role == "" {
		role = models.RoleInvestor
	}
	if role == models.RoleAdmin || !models.ValidRole(role) {
		return nil, errors.New("role must be investor or business")
	}

	existingUser, _ := s.repo.GetByEmail(input.Email)
	if existingUser != nil {
		return nil, errors.New("user with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Country:  input.Country,
		Password: string(hashedPassword),
		Role:     role,
		Status:   "active",
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) Update(user *models.User) error {
	return s.repo.Update(user)
}

func (s *service) List(page, limit int) ([]*models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit
	return s.repo.List(offset, limit)
}
