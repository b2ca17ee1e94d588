package valueobjects

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces unique ids for tasks, edges and templates.
// Uniqueness is required within one store lifetime; the format carries no meaning.
type IDGenerator interface {
	NewTaskID() string
	NewEdgeID() string
	NewTemplateID() string
	// NewBatchToken returns a token shared by every id minted in one template instantiation
	NewBatchToken() string
}

// UUIDGenerator generates random UUID-based ids
type UUIDGenerator struct{}

// NewUUIDGenerator creates a UUID-backed generator
func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NewTaskID() string     { return "task-" + uuid.New().String() }
func (UUIDGenerator) NewEdgeID() string     { return "edge-" + uuid.New().String() }
func (UUIDGenerator) NewTemplateID() string { return "template-" + uuid.New().String() }
func (UUIDGenerator) NewBatchToken() string { return uuid.New().String() }

// SequenceGenerator generates monotonically increasing ids. Safe for concurrent use.
type SequenceGenerator struct {
	next atomic.Int64
}

// NewSequenceGenerator creates a counter-backed generator starting at 1
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

func (g *SequenceGenerator) seq() string {
	return strconv.FormatInt(g.next.Add(1), 10)
}

func (g *SequenceGenerator) NewTaskID() string     { return "task-" + g.seq() }
func (g *SequenceGenerator) NewEdgeID() string     { return "edge-" + g.seq() }
func (g *SequenceGenerator) NewTemplateID() string { return "template-" + g.seq() }
func (g *SequenceGenerator) NewBatchToken() string { return "b" + g.seq() }

// Clock returns the current time
type Clock func() time.Time

// SystemClock returns wall-clock time in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

// FixedClock returns a clock frozen at t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
