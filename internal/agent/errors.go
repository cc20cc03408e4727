package agent

import "fmt"

// EndpointError reports that the model endpoint could not produce a reply.
// It ends the run.
type EndpointError struct {
	Model string
	Step  int // 1-based model invocation that failed
	Err   error
}

func (e *EndpointError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("model endpoint (%s) failed at step %d: %v", e.Model, e.Step, e.Err)
	}
	return fmt.Sprintf("model endpoint failed at step %d: %v", e.Step, e.Err)
}

func (e *EndpointError) Unwrap() error { return e.Err }
