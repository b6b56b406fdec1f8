package store

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/htstore/pkg/htpasswd"
)

func TestAuthenticate_MissingDefaultFileRejectsQuietly(t *testing.T) {
	t.Parallel()

	// A freshly configured store with no users yet rejects logins instead
	// of surfacing the missing-file error.
	s, _ := singleFileStore(t)

	groups, ok, err := s.Authenticate(t.Context(), "alice", "secret")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, groups)
}

func TestAuthenticate_MissingSecondaryFileSurfaces(t *testing.T) {
	t.Parallel()

	// A missing non-default file cannot self-heal by being written, so the
	// failure is real.
	s, usersPath, adminsPath := twoFileStore(t, "", "")
	writeUsersFile(t, usersPath, "alice:h1\n")
	require.NoError(t, os.Remove(adminsPath))

	_, ok, err := s.Authenticate(t.Context(), "alice", "secret")
	require.Error(t, err)
	assert.False(t, ok)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.False(t, fe.Default)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	t.Parallel()

	s, path := singleFileStore(t)
	writeUsersFile(t, path, "alice:h1\n")

	groups, ok, err := s.Authenticate(t.Context(), "ghost", "secret")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, groups)
}

func TestAuthenticate_MalformedHashRejects(t *testing.T) {
	t.Parallel()

	s, path := singleFileStore(t)
	writeUsersFile(t, path, "alice:not-a-real-hash\n")

	_, ok, err := s.Authenticate(t.Context(), "alice", "secret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticate_GroupsAcrossFiles(t *testing.T) {
	t.Parallel()

	hash, err := htpasswd.Hash("secret")
	require.NoError(t, err)

	// alice is in both files with the same password: she authenticates and
	// carries both groups, in merge order.
	s, _, _ := twoFileStore(t, "alice:"+hash+"\n", "alice:"+hash+"\n")

	groups, ok, err := s.Authenticate(t.Context(), "alice", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"users", "admins"}, groups)
}

func TestAuthenticate_SeesExternalWrites(t *testing.T) {
	t.Parallel()

	hash, err := htpasswd.Hash("secret")
	require.NoError(t, err)

	s, path := singleFileStore(t)
	writeUsersFile(t, path, "alice:"+hash+"\n")

	_, ok, err := s.Authenticate(t.Context(), "alice", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	// Another process appends bob. Bump the modification time explicitly
	// so the change is visible regardless of filesystem granularity.
	writeUsersFile(t, path, "alice:"+hash+"\nbob:"+hash+"\n")
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	groups, ok, err := s.Authenticate(t.Context(), "bob", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"users"}, groups)
}

func TestAuthenticate_ReturnedGroupsDetached(t *testing.T) {
	t.Parallel()

	hash, err := htpasswd.Hash("secret")
	require.NoError(t, err)

	s, path := singleFileStore(t)
	writeUsersFile(t, path, "alice:"+hash+"\n")

	groups, ok, err := s.Authenticate(t.Context(), "alice", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	groups[0] = "changed"
	again, ok, err := s.Authenticate(t.Context(), "alice", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"users"}, again)
}
