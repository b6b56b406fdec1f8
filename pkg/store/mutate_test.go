package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/htstore/pkg/htpasswd"
)

// readFile returns the file's content, or "" if it does not exist.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func TestAddUser_BootstrapsMissingDefaultFile(t *testing.T) {
	t.Parallel()

	s, path := singleFileStore(t)
	require.NoError(t, s.AddUser(t.Context(), "alice", "secret"))

	// The file now exists with exactly one well-formed entry line.
	content := readFile(t, path)
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	require.Len(t, lines, 1)

	name, hash, found := strings.Cut(lines[0], ":")
	require.True(t, found)
	assert.Equal(t, "alice", name)
	assert.True(t, htpasswd.Verify("secret", hash))
	assert.True(t, strings.HasSuffix(content, "\n"), "written file must end with a newline")

	// The index reflects the write without an explicit reload.
	assert.Equal(t, 1, s.UserCount())
}

func TestAddUser_ThenAuthenticate(t *testing.T) {
	t.Parallel()

	s, _ := singleFileStore(t)
	require.NoError(t, s.AddUser(t.Context(), "alice", "secret"))

	groups, ok, err := s.Authenticate(t.Context(), "alice", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"users"}, groups)

	groups, ok, err = s.Authenticate(t.Context(), "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, groups)
}

func TestAddUser_DuplicateRejected(t *testing.T) {
	t.Parallel()

	s, path := singleFileStore(t)
	writeUsersFile(t, path, "alice:h1\n")
	before := readFile(t, path)

	err := s.AddUser(t.Context(), "alice", "anything")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, before, readFile(t, path), "failed add must not touch the file")
}

func TestAddUser_DuplicateAddedByAnotherProcess(t *testing.T) {
	t.Parallel()

	// The cached index is empty, so the cheap pre-check passes; the
	// re-check against the content read under the lock must catch the
	// duplicate written by the other process.
	s, path := singleFileStore(t)
	writeUsersFile(t, path, "alice:h1\n")

	err := s.AddUser(t.Context(), "alice", "anything")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAddUser_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "empty username", username: "", password: "x", wantErr: ErrInvalidUsername},
		{name: "username with colon", username: "a:b", password: "x", wantErr: ErrInvalidUsername},
		{name: "username with newline", username: "a\nb", password: "x", wantErr: ErrInvalidUsername},
		{name: "comment leader", username: "#alice", password: "x", wantErr: ErrInvalidUsername},
		{name: "empty password", username: "alice", password: "", wantErr: ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, path := singleFileStore(t)
			err := s.AddUser(t.Context(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)

			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "rejected add must not create the file")
		})
	}
}

func TestAddUser_MaxUsers(t *testing.T) {
	t.Parallel()

	t.Run("limit reached", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "users.htpasswd")
		writeUsersFile(t, path, "alice:h1\n")
		s := newStore(t, Config{
			Files:    []FileConfig{{Path: path, Group: "users", Default: true}},
			MaxUsers: 1,
		})

		err := s.AddUser(t.Context(), "bob", "x")
		assert.ErrorIs(t, err, ErrMaxUsersReached)
	})

	t.Run("below limit", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "users.htpasswd")
		s := newStore(t, Config{
			Files:    []FileConfig{{Path: path, Group: "users", Default: true}},
			MaxUsers: 1,
		})

		require.NoError(t, s.AddUser(t.Context(), "alice", "x"))
		assert.ErrorIs(t, s.AddUser(t.Context(), "bob", "x"), ErrMaxUsersReached)
	})

	t.Run("negative disables registration", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "users.htpasswd")
		s := newStore(t, Config{
			Files:    []FileConfig{{Path: path, Group: "users", Default: true}},
			MaxUsers: -1,
		})

		err := s.AddUser(t.Context(), "alice", "x")
		assert.ErrorIs(t, err, ErrMaxUsersReached)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestAddUser_ConcurrentDistinctUsers(t *testing.T) {
	t.Parallel()

	// Two stores on the same default file stand in for two independent
	// processes: only the advisory file lock serializes them. Both adds
	// must survive into the file.
	path := filepath.Join(t.TempDir(), "users.htpasswd")
	cfg := Config{Files: []FileConfig{{Path: path, Group: "users", Default: true}}}
	s1 := newStore(t, cfg)
	s2 := newStore(t, cfg)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, s1.AddUser(t.Context(), "alice", "pw-alice"))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, s2.AddUser(t.Context(), "bob", "pw-bob"))
	}()
	wg.Wait()

	content := readFile(t, path)
	assert.Contains(t, content, "alice:")
	assert.Contains(t, content, "bob:")

	fresh := newStore(t, cfg)
	require.NoError(t, fresh.Reload(t.Context()))
	assert.Equal(t, 2, fresh.UserCount())
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	s, _ := singleFileStore(t)
	require.NoError(t, s.AddUser(t.Context(), "alice", "old-secret"))

	require.NoError(t, s.ChangePassword(t.Context(), "alice", "old-secret", "new-secret"))

	_, ok, err := s.Authenticate(t.Context(), "alice", "new-secret")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = s.Authenticate(t.Context(), "alice", "old-secret")
	require.NoError(t, err)
	assert.False(t, ok, "old password must stop working")
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	t.Parallel()

	s, path := singleFileStore(t)
	require.NoError(t, s.AddUser(t.Context(), "alice", "correct"))
	before := readFile(t, path)

	err := s.ChangePassword(t.Context(), "alice", "wrong", "new-secret")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, before, readFile(t, path))
}

func TestChangePassword_EmptyOldSkipsCheck(t *testing.T) {
	t.Parallel()

	// Administrative reset: no old password supplied, no verification.
	s, _ := singleFileStore(t)
	require.NoError(t, s.AddUser(t.Context(), "alice", "forgotten"))

	require.NoError(t, s.ChangePassword(t.Context(), "alice", "", "new-secret"))

	_, ok, err := s.Authenticate(t.Context(), "alice", "new-secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	t.Parallel()

	s, path := singleFileStore(t)
	writeUsersFile(t, path, "bob:h1\n")
	before := readFile(t, path)

	err := s.ChangePassword(t.Context(), "ghost", "x", "y")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, before, readFile(t, path), "failed change must not touch the file")
}

func TestChangePassword_UserOnlyInSecondaryFile(t *testing.T) {
	t.Parallel()

	// carol exists in the admins file but not in the default file: the
	// index knows her, but the rewrite targets the default file only.
	s, _, _ := twoFileStore(t, "alice:h1\n", "carol:h2\n")
	require.NoError(t, s.Reload(t.Context()))

	err := s.ChangePassword(t.Context(), "carol", "", "new-secret")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword_Validation(t *testing.T) {
	t.Parallel()

	s, _ := singleFileStore(t)

	assert.ErrorIs(t, s.ChangePassword(t.Context(), "", "old", "new"), ErrInvalidUsername)
	assert.ErrorIs(t, s.ChangePassword(t.Context(), "alice", "old", ""), ErrEmptyPassword)
}
