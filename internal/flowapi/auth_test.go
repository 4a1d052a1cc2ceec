package flowapi

import (
	"context"
	"errors"
	"testing"
)

func TestAuthRepository_SignIn(t *testing.T) {
	t.Parallel()

	fb, exec := newFakeBackend(t, map[string]string{
		"SignIn": `{"data":{"signIn":{"token":"abc123","user":{"id":"42","username":"ada","timewHook":true}}}}`,
	})

	result, err := NewAuthRepository(exec).SignIn(context.Background(), "ada", "secret")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if result.Token != "abc123" {
		t.Errorf("Expected token abc123, got %s", result.Token)
	}
	if result.User.ID != 42 || result.User.Username != "ada" || !result.User.TimewHook {
		t.Errorf("Unexpected user %+v", result.User)
	}
	if fb.last().Variables["username"] != "ada" {
		t.Errorf("Expected username variable, got %v", fb.last().Variables)
	}
}

func TestAuthRepository_SignInRejected(t *testing.T) {
	t.Parallel()

	_, exec := newFakeBackend(t, map[string]string{
		"SignIn": `{"data":{"signIn":null}}`,
	})

	_, err := NewAuthRepository(exec).SignIn(context.Background(), "ada", "wrong")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthRepository_Me(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		wantErr  error
		wantID   int
	}{
		{
			name:     "numeric id",
			response: `{"data":{"me":{"id":7,"username":"ada","timewHook":false}}}`,
			wantID:   7,
		},
		{
			name:     "no user",
			response: `{"data":{"me":null}}`,
			wantErr:  ErrUnauthorized,
		},
		{
			name:     "rejected token",
			response: `{"errors":[{"message":"Unauthorized"}]}`,
			wantErr:  ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, exec := newFakeBackend(t, map[string]string{"Me": tt.response})
			user, err := NewAuthRepository(exec).Me(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Me() error = %v", err)
			}
			if user.ID != tt.wantID {
				t.Errorf("Expected id %d, got %d", tt.wantID, user.ID)
			}
		})
	}
}

func TestAuthRepository_Flags(t *testing.T) {
	t.Parallel()

	fb, exec := newFakeBackend(t, map[string]string{
		"SignOut":         `{"data":{"signOut":true}}`,
		"ModifyTimewHook": `{"data":{"setTimewHook":true}}`,
	})
	repo := NewAuthRepository(exec)

	ok, err := repo.SignOut(context.Background())
	if err != nil || !ok {
		t.Errorf("Expected sign out to succeed, got %v, %v", ok, err)
	}

	ok, err = repo.SetTimewHook(context.Background(), true)
	if err != nil || !ok {
		t.Errorf("Expected hook update to succeed, got %v, %v", ok, err)
	}
	if fb.last().Variables["enabled"] != true {
		t.Errorf("Expected enabled=true, got %v", fb.last().Variables["enabled"])
	}
}
