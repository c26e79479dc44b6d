package usecase

import (
	"errors"
	"time"

	"main/model"
	"main/repository"
	"main/services"
	"main/utils"
)

var (
	ErrUsernameTaken   = errors.New("username already exists")
	ErrWeakPassword    = errors.New("password does not meet requirements")
	ErrWrongPassword   = errors.New("current password is incorrect")
	ErrSamePassword    = errors.New("new password must differ from the current one")
	ErrUserNotFound    = errors.New("user not found")
	ErrMissingUserData = errors.New("username, email and password are required")
)

type UserService struct {
	repo *repository.UserRepo
}

func NewUserService(repo *repository.UserRepo) *UserService {
	return &UserService{repo: repo}
}

// CreateUser validates, hashes the password and stores a new admin account.
func (svc *UserService) CreateUser(user *model.User) error {
	if user == nil || user.Username == "" || user.Email == "" || user.Password == "" {
		return ErrMissingUserData
	}
	if !utils.ValidatePassword(user.Password) {
		return ErrWeakPassword
	}

	existing, err := svc.repo.FindUserByUsername(user.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUsernameTaken
	}

	hashed, err := services.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed

	if user.UserID == "" {
		user.UserID = utils.GenerateUserID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	return svc.repo.AddUser(user)
}

// ChangePassword verifies the current password before storing a new hash.
func (svc *UserService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := svc.repo.FindUser(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	ok, err := services.VerifyPassword(user.Password, currentPassword)
	if err != nil || !ok {
		return ErrWrongPassword
	}
	if currentPassword == newPassword {
		return ErrSamePassword
	}
	if !utils.ValidatePassword(newPassword) {
		return ErrWeakPassword
	}

	hashed, err := services.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return svc.repo.UpdatePassword(userID, hashed)
}

func (svc *UserService) GetUser(userID string) (*model.User, error) {
	return svc.repo.FindUser(userID)
}
