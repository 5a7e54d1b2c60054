package monitor

import "github.com/slovo/slovo/desktop/internal/metrics"

var allStates = []State{Connected, Degraded, Disconnected}

// instruments is nil-safe so an unconfigured Monitor records nothing.
type instruments struct {
	polls       *metrics.Counter
	transitions *metrics.Counter
	state       *metrics.Gauge
}

func newInstruments(reg *metrics.Registry) *instruments {
	return &instruments{
		polls: reg.NewCounter("slovo_agent_health_polls_total",
			"Agent health polls by classified outcome.", "result"),
		transitions: reg.NewCounter("slovo_agent_state_transitions_total",
			"Connectivity state transitions.", "from", "to"),
		state: reg.NewGauge("slovo_agent_connectivity_state",
			"1 for the connectivity state entered by the most recent transition.", "state"),
	}
}

func (i *instruments) poll(s State) {
	if i == nil {
		return
	}
	i.polls.Inc(string(s))
}

// transition is called with from == "" once, for the initial state.
func (i *instruments) transition(from, to State) {
	if i == nil {
		return
	}
	if from != "" {
		i.transitions.Inc(string(from), string(to))
	}
	for _, s := range allStates {
		v := 0.0
		if s == to {
			v = 1
		}
		i.state.Set(v, string(s))
	}
}
