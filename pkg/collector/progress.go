package collector

// Stage is a step in collecting one user
type Stage int

const (
	StagePending Stage = iota
	StageResolve
	StagePosts
	StageSubscriptions
	StageGroups
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageResolve:
		return "resolving"
	case StagePosts:
		return "posts"
	case StageSubscriptions:
		return "subscriptions"
	case StageGroups:
		return "groups"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Finished reports whether no further events follow for the user
func (s Stage) Finished() bool {
	return s == StageDone || s == StageFailed
}

// Event reports that a user entered a stage. Posts and Groups hold the
// counts gathered so far; Err is set for StageFailed.
type Event struct {
	User   string
	UserID int64
	Stage  Stage
	Posts  int
	Groups int
	Err    error
}

// Observer receives progress events on the collecting goroutine. It must
// return quickly.
type Observer func(Event)

// Observe registers fn to receive progress events. nil disables reporting.
func (c *Collector) Observe(fn Observer) {
	c.observer = fn
}

func (c *Collector) emit(e Event) {
	if c.observer != nil {
		c.observer(e)
	}
}
