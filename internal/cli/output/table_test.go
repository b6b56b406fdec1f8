package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Username", "Groups")

	assert.Equal(t, []string{"Username", "Groups"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("alice", "users, admins")
	table.AddRow("bob", "users")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alice", "users, admins"}, rows[0])
	assert.Equal(t, []string{"bob", "users"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Username", "Groups")
	table.AddRow("alice", "users")
	table.AddRow("bob", "admins")

	var buf bytes.Buffer
	err := PrintTable(&buf, table)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "USERNAME")
	assert.Contains(t, output, "GROUPS")
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "users")
	assert.Contains(t, output, "bob")
	assert.Contains(t, output, "admins")
}

func TestSimpleTable(t *testing.T) {
	pairs := [][2]string{
		{"Username", "alice"},
		{"Result", "ok"},
	}

	var buf bytes.Buffer
	err := SimpleTable(&buf, pairs)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Username")
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "Result")
	assert.Contains(t, output, "ok")
}
