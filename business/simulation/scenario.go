package simulation

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a fixed set of places with known acceptance rates.
type Scenario struct {
	Name string `yaml:"name"`
	Arms []Arm  `yaml:"arms"`
}

type Arm struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	AcceptRate float64 `yaml:"accept_rate"`
	// optional starting counts
	Successes int64 `yaml:"successes"`
	Failures  int64 `yaml:"failures"`
}

// LoadScenario reads and validates a YAML scenario file. Unknown keys are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) Validate() error {
	if len(s.Arms) == 0 {
		return errors.New("scenario needs at least one arm")
	}

	seen := make(map[string]struct{}, len(s.Arms))
	for i, a := range s.Arms {
		if a.ID == "" {
			return fmt.Errorf("arm %d: id is required", i)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("arm %q: duplicate id", a.ID)
		}
		seen[a.ID] = struct{}{}

		if a.AcceptRate < 0 || a.AcceptRate > 1 {
			return fmt.Errorf("arm %q: accept_rate must be in [0,1]", a.ID)
		}
		if a.Successes < 0 || a.Failures < 0 {
			return fmt.Errorf("arm %q: starting counts must be non-negative", a.ID)
		}
	}
	return nil
}

// best returns the highest accept rate; the first arm wins ties.
func (s *Scenario) best() Arm {
	best := s.Arms[0]
	for _, a := range s.Arms[1:] {
		if a.AcceptRate > best.AcceptRate {
			best = a
		}
	}
	return best
}
