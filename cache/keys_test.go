package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationKey_IsSymmetric(t *testing.T) {
	assert.Equal(t, ConversationKey(3, 7, 50, 0), ConversationKey(7, 3, 50, 0))
	assert.Equal(t, "conversation:3:7:messages:50:0", ConversationKey(7, 3, 50, 0))
	assert.NotEqual(t, ConversationKey(3, 7, 50, 0), ConversationKey(3, 7, 50, 50))
}

func TestNamedKeys(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{ProfileKey(42), "profile:42"},
		{UsernameKey("alice"), "by-username:alice"},
		{EmailKey("a@b.io"), "by-email:a@b.io"},
		{MessageKey(9), "message:9"},
		{UserMessagesKey(1, 50, 100), "user-messages:1:50:100"},
		{PartnersKey(1), "partners:1"},
		{UnreadKey(5), "unread:5"},
		{MessageSearchKey(1, "hi there", 20), "message-search:1:20:hi there"},
		{RecentKey(2, 10), "recent:2:10"},
		{UserSearchKey("bo", 10), "user-search:10:bo"},
		{PartnersPattern(), "partners:*"},
		{OnlineUsersKey(), "online-users"},
		{OnlineKey(8), "online:8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}

func TestSearchKey_QueryCannotForgeSegments(t *testing.T) {
	// a query that looks like a limit must not collide with another limit
	assert.NotEqual(t, MessageSearchKey(1, "20:x", 10), MessageSearchKey(1, "x", 20))
	assert.NotEqual(t, UserSearchKey("5", 10), UserSearchKey("10", 5))
}

func TestBuildKey(t *testing.T) {
	type filter struct {
		Status string `json:"status"`
		Tags   []string
	}

	t.Run("primitives", func(t *testing.T) {
		assert.Equal(t, "unread:5", BuildKey("unread", 5))
		assert.Equal(t, "p:a:1:true:1.5", BuildKey("p", "a", int64(1), true, 1.5))
		assert.Equal(t, "p", BuildKey("p"))
	})

	t.Run("named arguments are order independent", func(t *testing.T) {
		a := BuildKey("search", 7, KV{"limit", 20}, KV{"offset", 0})
		b := BuildKey("search", 7, KV{"offset", 0}, KV{"limit", 20})
		assert.Equal(t, a, b)
		assert.Equal(t, "search:7:limit:20:offset:0", a)
	})

	t.Run("composite values hash deterministically", func(t *testing.T) {
		k1 := BuildKey("list", filter{Status: "open", Tags: []string{"x"}})
		k2 := BuildKey("list", filter{Status: "open", Tags: []string{"x"}})
		k3 := BuildKey("list", filter{Status: "closed", Tags: []string{"x"}})
		assert.Equal(t, k1, k2)
		assert.NotEqual(t, k1, k3)
		assert.Regexp(t, `^list:h[0-9a-f]+$`, k1)
	})

	t.Run("maps hash independently of insertion order", func(t *testing.T) {
		m1 := map[string]int{"a": 1, "b": 2}
		m2 := map[string]int{"b": 2, "a": 1}
		assert.Equal(t, BuildKey("m", m1), BuildKey("m", m2))
	})

	t.Run("pointers and named types are unwrapped", func(t *testing.T) {
		type userID int64
		id := int64(3)
		assert.Equal(t, "u:3", BuildKey("u", &id))
		assert.Equal(t, "u:3", BuildKey("u", userID(3)))
		assert.Equal(t, "u:nil", BuildKey("u", (*int64)(nil)))
	})

	t.Run("unencodable values fall back to their Go syntax", func(t *testing.T) {
		k1 := BuildKey("f", make(chan int))
		assert.Regexp(t, `^f:h[0-9a-f]+$`, k1)
	})
}

func TestPatterns(t *testing.T) {
	assert.Equal(t, "conversation:3:7:*", ConversationPattern(3, 7))
	assert.Equal(t, "user-messages:3:*", UserMessagesPattern(3))
	assert.Equal(t, "*:3:*", SegmentPattern(3))
	assert.True(t, IsPattern(RecentPattern(1)))
	assert.False(t, IsPattern(UnreadKey(1)))
}
