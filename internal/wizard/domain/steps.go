package domain

import "lead_funnel_backend/internal/flows"

// StepValid evaluates whether the 1-based interactive step is satisfied by
// the current form state. A step that declares no rule is vacuously valid;
// an index outside the flow's interactive range is invalid.
func StepValid(flow *flows.Flow, index int, f *FormData) bool {
	step, ok := flow.StepAt(index)
	if !ok {
		return false
	}

	switch step.Rule {
	case flows.RuleAddressResolved:
		return f.PostalCode != "" && f.HouseNumber != "" && f.Street != "" && f.City != ""

	case flows.RuleHomeDetails:
		if f.HouseType == "" || f.BuildYear == "" || f.Area == "" || f.EnergyLabel == "" {
			return false
		}
		return f.EstimatedEnergyUsage > 0 || f.EstimatedGasUsage > 0

	case flows.RuleInsulation:
		return len(f.Insulation) > 0

	case flows.RuleHeatDistribution:
		return len(f.HeatDistribution) > 0 && !IsDisqualifyingHeating(f.HeatDistribution)

	case flows.RuleContact:
		if f.FirstName == "" || f.LastName == "" || !IsValidEmail(f.Email) {
			return false
		}
		if flow.CollectPhone {
			return IsValidPhone(f.Phone)
		}
		return true

	default:
		return true
	}
}
