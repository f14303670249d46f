package audit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("audit")

const (
	// Capacity is the number of entries the log keeps
	Capacity = 5000
	// EvictBatch is the number of oldest entries dropped when an append hits Capacity
	EvictBatch = 2500
)

// Log is a fixed capacity ring buffer of formatted command entries. When an
// append finds the buffer full the oldest EvictBatch entries are dropped at once.
// All methods are safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	buf      []string
	head     int // index of the oldest entry
	size     int
	capacity int
	evict    int
}

// New creates an empty log with the default capacity and eviction batch
func New() *Log {
	return NewWithCapacity(Capacity, EvictBatch)
}

// NewWithCapacity creates an empty log. evict is clamped to [1, capacity].
func NewWithCapacity(capacity, evict int) *Log {
	if capacity < 1 {
		capacity = 1
	}
	if evict < 1 {
		evict = 1
	}
	if evict > capacity {
		evict = capacity
	}
	return &Log{
		buf:      make([]string, capacity),
		capacity: capacity,
		evict:    evict,
	}
}

// Record formats a command and appends it, see Format
func (l *Log) Record(label string, args []interface{}) {
	l.Push(Format(label, args))
}

// Push appends a preformatted entry
func (l *Log) Push(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size == l.capacity {
		// drop a whole batch so eviction does not happen on every append
		for i := 0; i < l.evict; i++ {
			l.buf[(l.head+i)%l.capacity] = ""
		}
		l.head = (l.head + l.evict) % l.capacity
		l.size -= l.evict
		common.AuditEvictions.Add(l.evict)
		Logger.Debugf("evicted %d audit entries", l.evict)
	}

	l.buf[(l.head+l.size)%l.capacity] = entry
	l.size++
}

// Snapshot returns all entries, oldest first
func (l *Log) Snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.head+i)%l.capacity]
	}
	return out
}

// Clear removes all entries
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.buf {
		l.buf[i] = ""
	}
	l.head = 0
	l.size = 0
}

// Len returns the number of stored entries
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// --------------------------------------------------------------------------
// Formatting
// --------------------------------------------------------------------------

// cursorIndex maps the scan family to the position of their cursor argument
var cursorIndex = map[string]int{
	"scan":  1,
	"sscan": 2,
	"hscan": 2,
	"zscan": 2,
}

// Format renders a command as "[label] arg0 arg1 ...". Every argument is
// lowercased, the cursor of SCAN, SSCAN, HSCAN and ZSCAN is left out.
func Format(label string, args []interface{}) string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(label)
	sb.WriteString("]")

	skip := -1
	if len(args) > 0 {
		if idx, ok := cursorIndex[strings.ToLower(token(args[0]))]; ok {
			skip = idx
		}
	}

	for i, arg := range args {
		if i == skip {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(strings.ToLower(token(arg)))
	}
	return sb.String()
}

// token converts one command argument to its textual form
func token(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
