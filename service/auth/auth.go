package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"media-engine-backend/dao"
	"media-engine-backend/model"
	"media-engine-backend/request"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

func UserRegister(req request.UserRegisterRequest) (*model.User, error) {
	existing, err := dao.GetUserByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %v", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s already exists", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := dao.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return user, nil
}

func UserLogin(req request.UserLoginRequest) (*model.User, error) {
	user, err := dao.GetUserByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %v", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
