package flowapi

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/benvon/flow/internal/graphql"
	"github.com/benvon/flow/internal/models"
)

// userID accepts the user id as either a JSON string or number
type userID int

func (id *userID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", string(b), err)
	}
	*id = userID(n)
	return nil
}

type userData struct {
	ID        userID `json:"id"`
	Username  string `json:"username"`
	TimewHook bool   `json:"timewHook"`
}

type authData struct {
	Token string   `json:"token"`
	User  userData `json:"user"`
}

// AuthRepository handles account operations against the backend
type AuthRepository struct {
	exec graphql.Executor
}

// NewAuthRepository creates a new auth repository
func NewAuthRepository(exec graphql.Executor) *AuthRepository {
	return &AuthRepository{exec: exec}
}

// SignIn exchanges credentials for a session token
func (r *AuthRepository) SignIn(ctx context.Context, username, password string) (models.AuthResult, error) {
	return r.authenticate(ctx, opSignIn, "signIn", username, password)
}

// SignUp creates an account and signs it in
func (r *AuthRepository) SignUp(ctx context.Context, username, password string) (models.AuthResult, error) {
	return r.authenticate(ctx, opSignUp, "signUp", username, password)
}

// SignOut invalidates the current session token
func (r *AuthRepository) SignOut(ctx context.Context) (bool, error) {
	return r.flag(ctx, opSignOut, "signOut", nil)
}

// Me returns the signed-in user
func (r *AuthRepository) Me(ctx context.Context) (models.User, error) {
	data, err := r.exec.Execute(ctx, opMe, nil)
	if err != nil {
		if graphql.IsUnauthorized(err) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, fmt.Errorf("failed to fetch current user: %w", err)
	}

	var d userData
	found, err := decodeField(data, "me", &d)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, ErrUnauthorized
	}
	return toUser(d), nil
}

// SetTimewHook toggles the timewarrior hook for the signed-in user
func (r *AuthRepository) SetTimewHook(ctx context.Context, enabled bool) (bool, error) {
	return r.flag(ctx, opSetTimewHook, "setTimewHook", map[string]any{"enabled": enabled})
}

func (r *AuthRepository) authenticate(ctx context.Context, op graphql.Operation, field, username, password string) (models.AuthResult, error) {
	data, err := r.exec.Execute(ctx, op, map[string]any{"username": username, "password": password})
	if err != nil {
		if graphql.IsUnauthorized(err) {
			return models.AuthResult{}, ErrUnauthorized
		}
		return models.AuthResult{}, fmt.Errorf("failed to execute %s: %w", field, err)
	}

	var d authData
	found, err := decodeField(data, field, &d)
	if err != nil {
		return models.AuthResult{}, err
	}
	if !found || d.Token == "" {
		return models.AuthResult{}, ErrUnauthorized
	}
	return models.AuthResult{Token: d.Token, User: toUser(d.User)}, nil
}

func (r *AuthRepository) flag(ctx context.Context, op graphql.Operation, field string, vars map[string]any) (bool, error) {
	data, err := r.exec.Execute(ctx, op, vars)
	if err != nil {
		return false, fmt.Errorf("failed to execute %s: %w", field, err)
	}
	var ok bool
	if _, err := decodeField(data, field, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func toUser(d userData) models.User {
	return models.User{ID: int(d.ID), Username: d.Username, TimewHook: d.TimewHook}
}
