package services

import (
	"context"
	"fmt"

	"github.com/Mathu0718/online-todo-mathu/models"
	"github.com/Mathu0718/online-todo-mathu/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// ExternalIdentity is the verified profile of an externally authenticated
// caller. The OAuth handshake itself happens upstream.
type ExternalIdentity struct {
	GoogleID string `json:"googleId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// ExternalLogin upserts the user bound to the external identity and issues
// a bearer token for it.
func (s *UserService) ExternalLogin(ctx context.Context, identity ExternalIdentity) (*models.User, string, error) {
	if identity.GoogleID == "" || identity.Email == "" {
		return nil, "", fmt.Errorf("googleId and email are required")
	}

	user, err := s.users.UpsertExternal(ctx, identity.GoogleID, identity.Email, identity.Name, identity.Avatar)
	if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %v", err)
	}
	return user, token, nil
}

// CurrentUser loads the caller's profile.
func (s *UserService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ResolveByEmails returns the users matching the given emails. Unknown
// emails are simply absent from the result; collaborator resolution with
// strict unknown-email reporting lives in the task service.
func (s *UserService) ResolveByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	return s.users.FindByEmails(ctx, emails)
}
