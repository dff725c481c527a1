// Package flows defines wizard flow variants as configuration. The funnel
// runs several near-identical multi-step forms (savings check, installer
// intake); instead of one controller per variant, a single controller is
// parameterized by an ordered list of step descriptors loaded from YAML.
package flows

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed flows.yaml
var defaultConfig []byte

// Rule identifies the validity rule a step declares. An empty rule means the
// step is vacuously valid.
type Rule string

const (
	// RuleAddressResolved requires postal code, house number, street and city
	// to all be non-empty (the address must have resolved).
	RuleAddressResolved Rule = "address_resolved"
	// RuleHomeDetails requires the enriched home attributes (house type,
	// build year, area, energy label and at least one usage figure).
	RuleHomeDetails Rule = "home_details"
	// RuleInsulation requires a non-empty insulation selection.
	RuleInsulation Rule = "insulation"
	// RuleHeatDistribution requires at least one heat-distribution tag that
	// is not exclusively drawn from the disqualifying subset.
	RuleHeatDistribution Rule = "heat_distribution"
	// RuleContact requires first/last name plus well-formed email, and a
	// well-formed phone number in flows that collect one.
	RuleContact Rule = "contact"
)

var knownRules = map[Rule]bool{
	"":                   true,
	RuleAddressResolved:  true,
	RuleHomeDetails:      true,
	RuleInsulation:       true,
	RuleHeatDistribution: true,
	RuleContact:          true,
}

// StepLocation is the step ID that triggers enrichment on leaving and a
// full form reset on returning.
const StepLocation = "location"

// Step describes one interactive wizard step.
type Step struct {
	ID   string `yaml:"id"`
	Rule Rule   `yaml:"rule"`
}

// LeadTarget carries the per-flow identifiers stamped into the workflow
// submission envelope.
type LeadTarget struct {
	FormName      string `yaml:"formName"`
	SiteID        string `yaml:"siteId"`
	FormID        string `yaml:"formId"`
	FormElementID string `yaml:"formElementId"`
	PageID        string `yaml:"pageId"`
	PublishedPath string `yaml:"publishedPath"`
	PageURL       string `yaml:"pageUrl"`
}

// Flow is one wizard variant: an ordered list of interactive steps followed
// by an implicit completion step.
type Flow struct {
	ID           string     `yaml:"id"`
	CollectPhone bool       `yaml:"collectPhone"`
	Steps        []Step     `yaml:"steps"`
	Lead         LeadTarget `yaml:"lead"`
}

// TotalSteps counts the interactive steps plus the completion step.
func (f *Flow) TotalSteps() int {
	return len(f.Steps) + 1
}

// CompletionStep is the absorbing terminal step index.
func (f *Flow) CompletionStep() int {
	return len(f.Steps) + 1
}

// TerminalInteractiveStep is the last step with user input; Next on this
// step submits the lead instead of advancing.
func (f *Flow) TerminalInteractiveStep() int {
	return len(f.Steps)
}

// StepAt returns the descriptor for a 1-based interactive step index.
func (f *Flow) StepAt(index int) (Step, bool) {
	if index < 1 || index > len(f.Steps) {
		return Step{}, false
	}
	return f.Steps[index-1], true
}

// IsLocationStep reports whether the 1-based index is the location step.
func (f *Flow) IsLocationStep(index int) bool {
	step, ok := f.StepAt(index)
	return ok && step.ID == StepLocation
}

// Registry holds the configured flow variants keyed by ID.
type Registry struct {
	flows map[string]*Flow
	order []string
}

type configFile struct {
	Flows []*Flow `yaml:"flows"`
}

// Load reads flow definitions from path, falling back to the embedded
// default configuration when path is empty.
func Load(path string) (*Registry, error) {
	raw := defaultConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read flow config: %w", err)
		}
		raw = data
	}

	var file configFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse flow config: %w", err)
	}
	if len(file.Flows) == 0 {
		return nil, fmt.Errorf("flow config declares no flows")
	}

	reg := &Registry{flows: make(map[string]*Flow, len(file.Flows))}
	for _, flow := range file.Flows {
		if err := validateFlow(flow); err != nil {
			return nil, err
		}
		if _, exists := reg.flows[flow.ID]; exists {
			return nil, fmt.Errorf("duplicate flow id %q", flow.ID)
		}
		reg.flows[flow.ID] = flow
		reg.order = append(reg.order, flow.ID)
	}
	return reg, nil
}

func validateFlow(flow *Flow) error {
	if flow.ID == "" {
		return fmt.Errorf("flow with empty id")
	}
	if len(flow.Steps) < 2 {
		return fmt.Errorf("flow %q needs at least two interactive steps", flow.ID)
	}
	if flow.Steps[0].ID != StepLocation {
		return fmt.Errorf("flow %q must start with the %s step", flow.ID, StepLocation)
	}
	seen := make(map[string]bool, len(flow.Steps))
	for _, step := range flow.Steps {
		if step.ID == "" {
			return fmt.Errorf("flow %q has a step with empty id", flow.ID)
		}
		if seen[step.ID] {
			return fmt.Errorf("flow %q repeats step %q", flow.ID, step.ID)
		}
		seen[step.ID] = true
		if !knownRules[step.Rule] {
			return fmt.Errorf("flow %q step %q declares unknown rule %q", flow.ID, step.ID, step.Rule)
		}
	}
	return nil
}

// Get returns the flow for an ID.
func (r *Registry) Get(id string) (*Flow, bool) {
	flow, ok := r.flows[id]
	return flow, ok
}

// IDs lists the configured flow IDs in declaration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}
