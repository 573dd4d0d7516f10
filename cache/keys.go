package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Sep joins key segments
const Sep = ":"

// Key namespaces
const (
	NSProfile       = "profile"
	NSByUsername    = "by-username"
	NSByEmail       = "by-email"
	NSMessage       = "message"
	NSConversation  = "conversation"
	NSUserMessages  = "user-messages"
	NSPartners      = "partners"
	NSUnread        = "unread"
	NSMessageSearch = "message-search"
	NSRecent        = "recent"
	NSUserSearch    = "user-search"
	NSOnlineUsers   = "online-users"
	NSOnline        = "online"
)

func ProfileKey(userID int64) string { return BuildKey(NSProfile, userID) }

func UsernameKey(username string) string { return BuildKey(NSByUsername, username) }

func EmailKey(email string) string { return BuildKey(NSByEmail, email) }

func MessageKey(messageID int64) string { return BuildKey(NSMessage, messageID) }

// ConversationKey orders the pair so both participants share one entry
func ConversationKey(a, b int64, limit, offset int) string {
	lo, hi := ordered(a, b)
	return BuildKey(NSConversation, lo, hi, "messages", limit, offset)
}

// UserMessagesKey caches a user's sent and received messages
func UserMessagesKey(userID int64, limit, offset int) string {
	return BuildKey(NSUserMessages, userID, limit, offset)
}

func PartnersKey(userID int64) string { return BuildKey(NSPartners, userID) }

func UnreadKey(userID int64) string { return BuildKey(NSUnread, userID) }

// MessageSearchKey keeps the raw query last so it can never shift the numeric segments
func MessageSearchKey(userID int64, query string, limit int) string {
	return BuildKey(NSMessageSearch, userID, limit, query)
}

func RecentKey(userID int64, limit int) string { return BuildKey(NSRecent, userID, limit) }

func UserSearchKey(query string, limit int) string {
	return BuildKey(NSUserSearch, limit, query)
}

func OnlineUsersKey() string { return NSOnlineUsers }

func OnlineKey(userID int64) string { return BuildKey(NSOnline, userID) }

// Wildcard patterns used by the invalidation policy

// ConversationPattern is directional; callers purge both (a,b) and (b,a)
func ConversationPattern(a, b int64) string {
	return BuildKey(NSConversation, a, b) + Sep + "*"
}

// ConversationsOfPattern matches conversations where userID is the lower id
func ConversationsOfPattern(userID int64) string {
	return BuildKey(NSConversation, userID) + Sep + "*"
}

func UserMessagesPattern(userID int64) string { return BuildKey(NSUserMessages, userID) + Sep + "*" }

func MessageSearchPattern(userID int64) string { return BuildKey(NSMessageSearch, userID) + Sep + "*" }

func RecentPattern(userID int64) string { return BuildKey(NSRecent, userID) + Sep + "*" }

func UserSearchPattern() string { return NSUserSearch + Sep + "*" }

// PartnersPattern matches every partner list; each one embeds the partners' display names
func PartnersPattern() string { return NSPartners + Sep + "*" }

// SegmentPattern matches any key carrying id as an inner segment
func SegmentPattern(id int64) string {
	return "*" + Sep + strconv.FormatInt(id, 10) + Sep + "*"
}

// IsPattern reports whether key contains glob metacharacters
func IsPattern(key string) bool {
	return strings.ContainsAny(key, "*?")
}

func ordered(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// KV is a named argument for BuildKey. Named arguments are sorted by name so
// call order does not matter.
type KV struct {
	Name  string
	Value any
}

// BuildKey derives a deterministic key from a prefix and arguments.
// Primitives are written as-is; anything else is replaced by "h" plus the
// xxhash64 of its JSON encoding. Positional arguments keep their order,
// KV arguments follow sorted by name as name:value.
func BuildKey(prefix string, args ...any) string {
	var sb strings.Builder
	sb.WriteString(prefix)

	var named []KV
	for _, arg := range args {
		if kv, ok := arg.(KV); ok {
			named = append(named, kv)
			continue
		}
		sb.WriteString(Sep)
		sb.WriteString(segment(arg))
	}

	sort.SliceStable(named, func(i, j int) bool { return named[i].Name < named[j].Name })
	for _, kv := range named {
		sb.WriteString(Sep)
		sb.WriteString(kv.Name)
		sb.WriteString(Sep)
		sb.WriteString(segment(kv.Value))
	}
	return sb.String()
}

func segment(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "nil"
		}
		return segment(rv.Elem().Interface())
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	}
	return surrogate(v)
}

// surrogate hashes composite values; encoding/json sorts map keys, so equal maps hash equally
func surrogate(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%T:%#v", v, v))
	}
	return "h" + strconv.FormatUint(xxhash.Sum64(data), 16)
}
