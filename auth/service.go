package auth

import (
	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/errors"
)

// ErrUserExists is returned by Register when the username is taken; the
// transport turns it into the userAlreadyExists response flag instead of an
// error status.
var ErrUserExists = errors.New("user already exists", errors.BadRequest())

// UserService owns credentials: registration, login checks and password
// changes. It never touches notes or pages.
type UserService struct {
	repo enotes.UserRepository
}

func NewUserService(repo enotes.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new account. The username is the identity everything
// else hangs off, so it has to be free.
func (s *UserService) Register(username, password string) error {
	if username == "" || password == "" {
		return errors.New("username and password are required", errors.BadRequest())
	}

	existing, err := s.repo.Get(username)
	if err != nil {
		return errors.New("could not read user", errors.WithCause(err))
	} else if existing != nil {
		return ErrUserExists
	}

	salt, err := generateSalt()
	if err != nil {
		return errors.New("could not generate salt", errors.WithCause(err))
	}

	return s.repo.Upsert(&enotes.User{
		Name: username,
		Hash: hashPassword(password, salt),
		Salt: salt,
	})
}

// Login reports whether the password matches the stored credentials. An
// unknown user is a plain false, indistinguishable from a wrong password.
func (s *UserService) Login(username, password string) (bool, error) {
	user, err := s.repo.Get(username)
	if err != nil {
		return false, errors.New("could not read user", errors.WithCause(err))
	}
	if user == nil {
		return false, nil
	}

	return passwordMatches(password, user.Salt, user.Hash), nil
}

// ChangePassword swaps the credentials after re-checking the old password.
// Returns false without error when the old password does not match.
func (s *UserService) ChangePassword(username, oldPassword, newPassword string) (bool, error) {
	if newPassword == "" {
		return false, errors.New("new password is required", errors.BadRequest())
	}

	ok, err := s.Login(username, oldPassword)
	if err != nil || !ok {
		return false, err
	}

	salt, err := generateSalt()
	if err != nil {
		return false, errors.New("could not generate salt", errors.WithCause(err))
	}

	err = s.repo.Upsert(&enotes.User{
		Name: username,
		Hash: hashPassword(newPassword, salt),
		Salt: salt,
	})
	if err != nil {
		return false, errors.New("could not update user", errors.WithCause(err))
	}

	return true, nil
}
