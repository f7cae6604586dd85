package metrics

import "sync"

// InMemory is a Recorder backed by in-process counters.
// Useful for tests and for exposing counts on a debug endpoint.
type InMemory struct {
	mu               sync.Mutex
	usersCreated     int64
	projectsCreated  int64
	signupPublished  map[string]int64
	signupProcessed  map[string]int64
	signupQueueDepth int64
}

// NewInMemory creates an in-memory Recorder.
func NewInMemory() *InMemory {
	return &InMemory{
		signupPublished: make(map[string]int64),
		signupProcessed: make(map[string]int64),
	}
}

func (m *InMemory) IncUserCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersCreated++
}

func (m *InMemory) IncProjectCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectsCreated++
}

func (m *InMemory) IncSignupPublished(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signupPublished[result]++
}

func (m *InMemory) IncSignupProcessed(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signupProcessed[result]++
}

func (m *InMemory) SetSignupQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signupQueueDepth = depth
}

// UsersCreated returns the created-users count.
func (m *InMemory) UsersCreated() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usersCreated
}

// ProjectsCreated returns the created-projects count.
func (m *InMemory) ProjectsCreated() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projectsCreated
}

// SignupPublished returns the publish count for a result.
func (m *InMemory) SignupPublished(result string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signupPublished[result]
}

// SignupProcessed returns the processed count for a result.
func (m *InMemory) SignupProcessed(result string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signupProcessed[result]
}

// SignupQueueDepth returns the last recorded backlog.
func (m *InMemory) SignupQueueDepth() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signupQueueDepth
}

// Snapshot returns a point-in-time copy of all counters.
func (m *InMemory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		UsersCreated:               m.usersCreated,
		ProjectsCreated:            m.projectsCreated,
		SignupPublishedSuccess:     m.signupPublished["success"],
		SignupPublishedDropped:     m.signupPublished["dropped"],
		SignupProcessedSuccess:     m.signupProcessed["success"],
		SignupProcessedFailed:      m.signupProcessed["failed"],
		SignupProcessedDeadLetters: m.signupProcessed["dead_lettered"],
		SignupQueueDepth:           m.signupQueueDepth,
	}
}
