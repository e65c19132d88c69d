package auth

import (
	"context"
	"strings"

	"retailops-dashboard/pkg/db"
	"retailops-dashboard/pkg/errutil"
	"retailops-dashboard/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	node *snowflake.Node
	repo repository.Repository[User]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node: p.Node,
		repo: repository.ProvideStore[User](p.DB),
	}
}

// Login verifies credentials and returns the user. Unknown users and bad
// passwords are reported distinctly, matching the dashboard's login form.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, errutil.ValidationFailed("username and password are required", "username")
	}

	user, err := s.repo.FindOne(ctx, &User{Username: username})
	if err != nil {
		zap.L().Error("failed to look up user", zap.String("username", username), zap.Error(err))
		return nil, errutil.Internal("failed to login", errutil.WithErr(err))
	}
	if user == nil {
		return nil, errutil.NotFound("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errutil.Unauthorized("incorrect password")
	}

	return user, nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errutil.ValidationFailed("username is required", "username")
	}
	if len(password) < 8 {
		return nil, errutil.ValidationFailed("password must be at least 8 characters", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errutil.Internal("failed to hash password", errutil.WithErr(err))
	}

	user := &User{
		ID:       s.node.Generate().String(),
		Username: username,
		Password: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, errutil.Conflict("username already taken")
		}
		zap.L().Error("failed to create user", zap.String("username", username), zap.Error(err))
		return nil, errutil.Internal("failed to register", errutil.WithErr(err))
	}

	return user, nil
}
