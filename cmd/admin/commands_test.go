package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCredentials(t *testing.T) {
	assert.Error(t, checkCredentials("", "longenough"))
	assert.Error(t, checkCredentials("nobody", "longenough"))
	assert.Error(t, checkCredentials("a@b.es", "short"))
	assert.NoError(t, checkCredentials("a@b.es", "longenough"))
}

func TestSchemaCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"schema"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "CREATE TABLE IF NOT EXISTS bookings")
	assert.Contains(t, out.String(), "slot_locks")
}

func TestGrantRejectsUnknownRole(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"grant", "--email", "a@b.es", "--role", "owner"})

	err := root.Execute()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown role"))
}
