/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateGetDelete(t *testing.T) {
	store := NewStore()

	sess, err := store.Create("123456", "conn-a", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "Host", sess.HostName)
	assert.Equal(t, "conn-a", sess.HostConnID)
	assert.Equal(t, testNow, sess.CreatedAt)

	_, err = store.Create("123456", "conn-b", "Other", testNow)
	require.Error(t, err)

	got, ok := store.Get("123456")
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, store.Len())

	deleted, ok := store.Delete("123456")
	require.True(t, ok)
	assert.Same(t, sess, deleted)
	assert.False(t, store.Exists("123456"))

	_, ok = store.Delete("123456")
	assert.False(t, ok)

	_, err = store.Create("123456", "conn-b", "Again", testNow)
	require.NoError(t, err, "codes are reusable once deleted")
}

func TestStoreConnectionIndex(t *testing.T) {
	store := NewStore()

	one, err := store.Create("111111", "host", "", testNow)
	require.NoError(t, err)
	two, err := store.Create("222222", "host", "", testNow)
	require.NoError(t, err)

	p := &Player{ID: "p", Name: "Pat", Status: StatusIn}
	one.addPlayer(p)
	store.bindPlayer(one, p, "phone")

	assert.ElementsMatch(t, []binding{{code: "111111"}, {code: "222222"}}, store.release("host"))
	assert.Empty(t, store.release("host"), "release drops the bindings")

	store.bindPlayer(one, p, "tablet")
	assert.Empty(t, store.release("phone"), "rebinding moves the player off the old connection")
	assert.Equal(t, []binding{{code: "111111", playerID: "p"}}, store.release("tablet"))

	store.bindHost(two, "laptop")
	store.bindHost(two, "desktop")
	assert.Empty(t, store.release("laptop"))

	store.Delete("222222")
	assert.Empty(t, store.release("desktop"), "deleting a session drops its bindings")
}
