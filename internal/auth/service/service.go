package service

import (
	"context"

	"github.com/memeboard/memeboard/internal/auth/dto"
	"github.com/memeboard/memeboard/internal/auth/model"
)

// AuthService is the authentication capability every endpoint handler
// depends on. All operations are stateless request/response: expected
// failures come back as typed errors, and no partial state survives a
// failed call.
type AuthService interface {
	// Register validates the fields (first failing rule wins, in
	// presentation order), rejects duplicate usernames and emails, and
	// on success persists the account and issues a bearer token.
	Register(ctx context.Context, dto dto.RegisterDTO) (model.IssuedSession, error)

	// Login authenticates by email and password. Unknown email and
	// wrong password are indistinguishable to the caller.
	Login(ctx context.Context, dto dto.LoginDTO) (model.IssuedSession, error)

	// Resolve answers "who is this bearer token". It returns (nil, nil)
	// for any token that is malformed, forged, expired, or issued for
	// an account that no longer exists; the identity is re-read from
	// the store so later profile changes are observed. A store failure
	// is reported distinctly, never as an invalid token.
	Resolve(ctx context.Context, accessToken string) (*model.Identity, error)

	// ChangePassword verifies the current password before hashing and
	// persisting the new one.
	ChangePassword(ctx context.Context, userID uint64, dto dto.ChangePasswordDTO) error
}
