package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DBall8/enotes/mock"
)

func TestUserService_RegisterLogin(t *testing.T) {
	service := NewUserService(&mock.UserRepository{})

	require.NoError(t, service.Register("alice", "s3cret"))

	ok, err := service.Login("alice", "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.Login("alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = service.Login("nobody", "s3cret")
	require.NoError(t, err)
	assert.False(t, ok, "unknown user looks like a wrong password")
}

func TestUserService_Register_Duplicate(t *testing.T) {
	service := NewUserService(&mock.UserRepository{})

	require.NoError(t, service.Register("alice", "s3cret"))
	assert.Equal(t, ErrUserExists, service.Register("alice", "other"))
}

func TestUserService_ChangePassword(t *testing.T) {
	service := NewUserService(&mock.UserRepository{})
	require.NoError(t, service.Register("alice", "old"))

	ok, err := service.ChangePassword("alice", "wrong", "new")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = service.ChangePassword("alice", "old", "new")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.Login("alice", "new")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.Login("alice", "old")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEncodeDecoder(t *testing.T) {
	ed := EncodeDecoder{Key: "test-key"}

	token, err := ed.Encode("alice")
	require.NoError(t, err)

	username, err := ed.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = ed.Decode("not-a-token")
	assert.Error(t, err)

	_, err = EncodeDecoder{Key: "other-key"}.Decode(token)
	assert.Error(t, err, "token signed with another key must not decode")
}

func TestHashPassword(t *testing.T) {
	salt, err := generateSalt()
	require.NoError(t, err)

	otherSalt, err := generateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt, otherSalt)

	hash := hashPassword("hunter2", salt)
	assert.True(t, passwordMatches("hunter2", salt, hash))
	assert.False(t, passwordMatches("hunter3", salt, hash))
	assert.False(t, passwordMatches("hunter2", otherSalt, hash))
}
