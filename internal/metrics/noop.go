package metrics

// Noop is a Recorder that discards all metrics.
type Noop struct{}

// NewNoop creates a no-op Recorder.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) IncUserCreated()                  {}
func (n *Noop) IncProjectCreated()               {}
func (n *Noop) IncSignupPublished(result string) {}
func (n *Noop) IncSignupProcessed(result string) {}
func (n *Noop) SetSignupQueueDepth(depth int64)  {}
