// Package metrics defines the application metrics recorder.
package metrics

// Recorder records application metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// IncUserCreated increments the created-users counter.
	IncUserCreated()
	// IncProjectCreated increments the created-projects counter.
	IncProjectCreated()
	// IncSignupPublished counts published signup messages by result
	// ("success" or "dropped").
	IncSignupPublished(result string)
	// IncSignupProcessed counts consumed signup messages by result
	// ("success", "failed" or "dead_lettered").
	IncSignupProcessed(result string)
	// SetSignupQueueDepth records the current stream backlog.
	SetSignupQueueDepth(depth int64)
}

// Snapshot is a point-in-time view of all recorded metrics.
type Snapshot struct {
	UsersCreated               int64
	ProjectsCreated            int64
	SignupPublishedSuccess     int64
	SignupPublishedDropped     int64
	SignupProcessedSuccess     int64
	SignupProcessedFailed      int64
	SignupProcessedDeadLetters int64
	SignupQueueDepth           int64
}

// Snapshotter exposes a consistent read of recorded metrics.
// *InMemory satisfies it.
type Snapshotter interface {
	Snapshot() Snapshot
}
