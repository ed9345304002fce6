package pipeline

// State is a step of a pipeline run.
type State int

const (
	StateIdle State = iota
	StateBootstrapping
	StateSelecting
	StateBuilding
	StateFunding
	StateSigning
	StateBroadcasting
	StateConfirming
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:          "Idle",
	StateBootstrapping: "Bootstrapping",
	StateSelecting:     "Selecting",
	StateBuilding:      "Building",
	StateFunding:       "Funding",
	StateSigning:       "Signing",
	StateBroadcasting:  "Broadcasting",
	StateConfirming:    "Confirming",
	StateDone:          "Done",
	StateFailed:        "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next lists the forward edge of every non-terminal state. Failed is
// reachable from any state and is not listed.
var next = map[State][]State{
	StateIdle:          {StateBootstrapping, StateSelecting, StateBuilding},
	StateBootstrapping: {StateSelecting},
	StateSelecting:     {StateBuilding},
	StateBuilding:      {StateFunding},
	StateFunding:       {StateSigning},
	StateSigning:       {StateBroadcasting},
	StateBroadcasting:  {StateConfirming},
	StateConfirming:    {StateDone},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}
