package service

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/memeboard/memeboard/internal/auth/dto"
	customErrors "github.com/memeboard/memeboard/internal/auth/errors"
	"github.com/memeboard/memeboard/internal/auth/model"
	"github.com/memeboard/memeboard/internal/auth/password"
	"github.com/memeboard/memeboard/internal/auth/policy"
	"github.com/memeboard/memeboard/internal/auth/token"
	"github.com/memeboard/memeboard/internal/repo"
)

type authService struct {
	userRepo repo.UserRepo
	codec    *token.Codec
	hasher   *password.Hasher
	pol      *policy.Policy
	tokenTTL time.Duration

	// hashSem bounds concurrent argon2 work so a burst of login
	// attempts cannot starve the rest of the process.
	hashSem *semaphore.Weighted

	now func() time.Time
}

// NewAuthService wires the authenticator. maxConcurrentHashes bounds
// the number of password hashes computed at once.
func NewAuthService(
	userRepo repo.UserRepo,
	codec *token.Codec,
	hasher *password.Hasher,
	pol *policy.Policy,
	tokenTTL time.Duration,
	maxConcurrentHashes int64,
) AuthService {
	if maxConcurrentHashes < 1 {
		maxConcurrentHashes = 1
	}
	return &authService{
		userRepo: userRepo,
		codec:    codec,
		hasher:   hasher,
		pol:      pol,
		tokenTTL: tokenTTL,
		hashSem:  semaphore.NewWeighted(maxConcurrentHashes),
		now:      time.Now,
	}
}

func (a *authService) Register(ctx context.Context, d dto.RegisterDTO) (model.IssuedSession, error) {
	// Field rules run before any store access.
	if err := a.pol.ValidateRegistration(d.Username, d.Email, d.Password, d.ConfirmPassword); err != nil {
		return model.IssuedSession{}, err
	}

	_, err := a.userRepo.GetUserByUsername(ctx, d.Username)
	if err == nil {
		return model.IssuedSession{}, customErrors.ErrDuplicateUsername
	}
	if !customErrors.IsNotFound(err) {
		return model.IssuedSession{}, customErrors.WrapInternal(err, "Register")
	}

	_, err = a.userRepo.GetUserByEmail(ctx, d.Email)
	if err == nil {
		return model.IssuedSession{}, customErrors.ErrDuplicateEmail
	}
	if !customErrors.IsNotFound(err) {
		return model.IssuedSession{}, customErrors.WrapInternal(err, "Register")
	}

	passwordHash, err := a.hashPassword(ctx, d.Password)
	if err != nil {
		return model.IssuedSession{}, err
	}

	user := model.User{
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: passwordHash,
	}
	// The checks above and this insert are not atomic: a racing
	// duplicate registration surfaces here via the store's unique
	// constraint and must keep its duplicate identity.
	id, err := a.userRepo.CreateUser(ctx, user)
	if err != nil {
		if customErrors.IsDuplicateUsername(err) || customErrors.IsDuplicateEmail(err) {
			return model.IssuedSession{}, err
		}
		return model.IssuedSession{}, customErrors.WrapInternal(err, "Register")
	}
	user.ID = id

	return a.issueSession(user)
}

func (a *authService) Login(ctx context.Context, d dto.LoginDTO) (model.IssuedSession, error) {
	user, err := a.userRepo.GetUserByEmail(ctx, d.Email)
	if customErrors.IsNotFound(err) {
		// Same answer as a wrong password, to prevent enumeration.
		return model.IssuedSession{}, customErrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.IssuedSession{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := a.verifyPassword(ctx, d.Password, user.PasswordHash)
	if err != nil {
		return model.IssuedSession{}, err
	}
	if !ok {
		return model.IssuedSession{}, customErrors.ErrInvalidCredentials
	}

	return a.issueSession(user)
}

func (a *authService) Resolve(ctx context.Context, accessToken string) (*model.Identity, error) {
	claims, err := a.codec.Decode(accessToken)
	if err != nil {
		return nil, nil
	}
	if claims.Expired(a.now()) {
		return nil, nil
	}

	// Re-fetch instead of trusting the token's copy: a deleted account
	// invalidates its outstanding tokens immediately, and renames are
	// observed.
	user, err := a.userRepo.GetUserByID(ctx, claims.UserID)
	if customErrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, customErrors.WrapInternal(err, "Resolve")
	}

	identity := user.Identity()
	return &identity, nil
}

func (a *authService) ChangePassword(ctx context.Context, userID uint64, d dto.ChangePasswordDTO) error {
	user, err := a.userRepo.GetUserByID(ctx, userID)
	if customErrors.IsNotFound(err) {
		return customErrors.ErrNotFound
	}
	if err != nil {
		return customErrors.WrapInternal(err, "ChangePassword")
	}

	ok, err := a.verifyPassword(ctx, d.CurrentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return customErrors.ErrInvalidCredentials
	}

	if d.NewPassword == "" {
		return customErrors.NewInvalidArgument("password is required")
	}
	if err := a.pol.PasswordsMatch(d.NewPassword, d.ConfirmPassword); err != nil {
		return err
	}
	if err := a.pol.ValidatePassword(d.NewPassword); err != nil {
		return err
	}

	newHash, err := a.hashPassword(ctx, d.NewPassword)
	if err != nil {
		return err
	}
	if err := a.userRepo.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return customErrors.WrapInternal(err, "ChangePassword")
	}
	return nil
}

func (a *authService) issueSession(user model.User) (model.IssuedSession, error) {
	now := a.now()
	expiresAt := now.Add(a.tokenTTL)
	signed, err := a.codec.Encode(token.Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return model.IssuedSession{}, customErrors.WrapInternal(err, "issue token")
	}

	return model.IssuedSession{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user.Identity(),
	}, nil
}

func (a *authService) hashPassword(ctx context.Context, plaintext string) (string, error) {
	if err := a.hashSem.Acquire(ctx, 1); err != nil {
		return "", customErrors.WrapInternal(err, "acquire hash slot")
	}
	defer a.hashSem.Release(1)
	return a.hasher.Hash(plaintext)
}

func (a *authService) verifyPassword(ctx context.Context, plaintext, encodedHash string) (bool, error) {
	if err := a.hashSem.Acquire(ctx, 1); err != nil {
		return false, customErrors.WrapInternal(err, "acquire hash slot")
	}
	defer a.hashSem.Release(1)
	return a.hasher.Verify(plaintext, encodedHash), nil
}
