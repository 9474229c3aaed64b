package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pool(ids ...string) []*User {
	users := make([]*User, 0, len(ids))

	for _, id := range ids {
		users = append(users, &User{ID: id, Name: "User " + id, Active: true})
	}

	return users
}

func TestNextAssignee_EmptyPool(t *testing.T) {
	assert.Nil(t, NextAssignee(nil, ""))
	assert.Nil(t, NextAssignee([]*User{}, "u10"))
}

func TestNextAssignee_NoCursorStartsAtFirst(t *testing.T) {
	next := NextAssignee(pool("u10", "u11", "u12"), "")
	require.NotNil(t, next)
	assert.Equal(t, "u10", next.ID)
}

func TestNextAssignee_RotatesInPoolOrder(t *testing.T) {
	members := pool("u10", "u11", "u12")

	last := ""
	var got []string

	for range 4 {
		next := NextAssignee(members, last)
		require.NotNil(t, next)

		got = append(got, next.ID)
		last = next.ID
	}

	assert.Equal(t, []string{"u10", "u11", "u12", "u10"}, got)
}

func TestNextAssignee_WrapsFromLastMember(t *testing.T) {
	next := NextAssignee(pool("u10", "u11", "u12"), "u12")
	require.NotNil(t, next)
	assert.Equal(t, "u10", next.ID)
}

func TestNextAssignee_CursorLeftPoolResetsToFirst(t *testing.T) {
	// u11 was deactivated after being assigned; the rotation starts over.
	next := NextAssignee(pool("u10", "u12"), "u11")
	require.NotNil(t, next)
	assert.Equal(t, "u10", next.ID)
}
