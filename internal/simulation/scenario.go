// Package simulation replays YAML scenarios against a pool hosted in the
// in-memory ledger.
//
// A scenario names a starting rate and a set of funded users, then lists steps
// (swaps, rate updates, token account freezes) with the error code each step is
// expected to produce. Running a scenario reports every step's outcome, the
// final balances and the processor's counters.
package simulation

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lugondev/go-fixedswap/internal/exchange"
)

// Step actions.
const (
	ActionBuy     = "buy"
	ActionSell    = "sell"
	ActionSetRate = "set-rate"
	ActionFreeze  = "freeze"
	ActionThaw    = "thaw"
)

// Scenario is a scripted sequence of pool operations.
type Scenario struct {
	Name     string `yaml:"name"`
	Rate     string `yaml:"rate"`
	Decimals uint8  `yaml:"decimals"`
	Users    []User `yaml:"users"`
	Steps    []Step `yaml:"steps"`
}

// User is a funded participant. Each user gets a token account for the pool's
// mint.
type User struct {
	Name     string `yaml:"name"`
	Lamports uint64 `yaml:"lamports"`
}

// Step is one operation. Expect holds the error code the step must fail with,
// or is empty when the step must succeed.
type Step struct {
	Action string `yaml:"action"`
	User   string `yaml:"user"`
	Amount uint64 `yaml:"amount"`
	MinOut uint64 `yaml:"min_out"`
	Rate   string `yaml:"rate"`
	Expect string `yaml:"expect"`
}

func (s Step) String() string {
	switch s.Action {
	case ActionBuy, ActionSell:
		return fmt.Sprintf("%s %s amount=%d min_out=%d", s.User, s.Action, s.Amount, s.MinOut)
	case ActionSetRate:
		return fmt.Sprintf("%s %s rate=%s", s.User, s.Action, s.Rate)
	default:
		return fmt.Sprintf("%s %s", s.User, s.Action)
	}
}

// Parse decodes a scenario and validates it. Unknown fields are rejected.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadFile reads and parses a scenario file.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks rates, user names and step references.
func (sc *Scenario) Validate() error {
	if _, err := exchange.ParseRate(sc.Rate); err != nil {
		return fmt.Errorf("scenario rate: %w", err)
	}

	users := make(map[string]bool, len(sc.Users))
	for _, u := range sc.Users {
		if u.Name == "" {
			return fmt.Errorf("user without a name")
		}
		if users[u.Name] {
			return fmt.Errorf("duplicate user %q", u.Name)
		}
		users[u.Name] = true
	}

	for i, step := range sc.Steps {
		if !users[step.User] {
			return fmt.Errorf("step %d: unknown user %q", i+1, step.User)
		}
		switch step.Action {
		case ActionBuy, ActionSell, ActionFreeze, ActionThaw:
		case ActionSetRate:
			if _, err := exchange.ParseRate(step.Rate); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
	}
	return nil
}
