package system

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseSteer     Phase = iota // 0: scripted steering decisions
	PhaseIntegrate              // 1: advance positions by one step
	PhaseResolve                // 2: wall bounces, constraints
	PhaseCleanup                // 3: end-of-tick bookkeeping
)

// Step describes the tick being executed.
type Step struct {
	Duration float64 // simulated seconds per tick
	Runtime  float64 // simulated seconds reached once this tick completes
	TickID   uint64
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(step Step) error
}
