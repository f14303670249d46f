package keys

import (
	"strings"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/pkg/errors"
)

// --------------------------------------------------------------------------
// Key types
// --------------------------------------------------------------------------

// KeyType is the type tag reported by TYPE
type KeyType string

const (
	TypeString KeyType = "string"
	TypeList   KeyType = "list"
	TypeSet    KeyType = "set"
	TypeZSet   KeyType = "zset"
	TypeHash   KeyType = "hash"
	TypeStream KeyType = "stream"
	// TypeNone is reported for missing keys
	TypeNone KeyType = "none"
)

// ParseKeyType accepts the six supported tags, case insensitive. Anything
// else, including "none", fails with common.ErrUnsupportedKeyType.
func ParseKeyType(tag string) (KeyType, error) {
	t := KeyType(strings.ToLower(strings.TrimSpace(tag)))
	switch t {
	case TypeString, TypeList, TypeSet, TypeZSet, TypeHash, TypeStream:
		return t, nil
	default:
		return "", errors.Wrapf(common.ErrUnsupportedKeyType, "type %q", tag)
	}
}

// Label returns the tag with an upper case first letter, "zset" becomes "Zset"
func (t KeyType) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// --------------------------------------------------------------------------
// Read results
// --------------------------------------------------------------------------

// KeyDescriptor summarizes a key
type KeyDescriptor struct {
	Key   string  `json:"key"`
	Type  KeyType `json:"type"`
	Label string  `json:"label"`
	// TTL in seconds, -1 for persistent keys
	TTL int64 `json:"ttl"`
	// Size is the byte length of strings and the element count of all other types
	Size int64 `json:"size"`
}

// KeyValue is the content of a key, one of StringValue, ListValue, SetValue,
// ZSetValue, HashValue or StreamValue
type KeyValue interface {
	Type() KeyType
}

type (
	StringValue string
	ListValue   []string
	SetValue    []string
	ZSetValue   []ZMember
	HashValue   map[string]string
	// StreamValue holds the newest entries first
	StreamValue []StreamEntry
)

func (StringValue) Type() KeyType { return TypeString }
func (ListValue) Type() KeyType   { return TypeList }
func (SetValue) Type() KeyType    { return TypeSet }
func (ZSetValue) Type() KeyType   { return TypeZSet }
func (HashValue) Type() KeyType   { return TypeHash }
func (StreamValue) Type() KeyType { return TypeStream }

// ZMember is a sorted set member with its score
type ZMember struct {
	Score  float64 `json:"score"`
	Member string  `json:"member"`
}

// StreamEntry is one stream entry. Value is the field map encoded as a JSON object.
type StreamEntry struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// KeyDetail is a key with its full content
type KeyDetail struct {
	KeyDescriptor
	Value KeyValue `json:"value"`
}

// ServerInfo is the parsed INFO reply. Direct sessions fill Fields, cluster
// sessions fill Nodes with one entry per master keyed by host:port.
type ServerInfo struct {
	Fields map[string]string            `json:"fields,omitempty"`
	Nodes  map[string]map[string]string `json:"nodes,omitempty"`
}

// --------------------------------------------------------------------------
// Write requests
// --------------------------------------------------------------------------

// WriteRequest describes a value to add to a key
type WriteRequest struct {
	Type  KeyType `json:"type"`
	Key   string  `json:"key"`
	Value string  `json:"value"`
	// Score of a sorted set member
	Score float64 `json:"score,omitempty"`
	// Field of a hash entry
	Field string `json:"field,omitempty"`
	// OldField is removed after the write when it differs from Field
	OldField string `json:"oldField,omitempty"`
	// ID of a stream entry, empty lets the server assign one
	ID string `json:"id,omitempty"`
}
