package payrollsetup

// Merge unions a user's saved lines with the master catalog: every component
// appears exactly once, saved amounts win, components without a saved line
// default to 0. Saved lines whose component left the catalog are kept as-is.
func Merge(master []Component, saved []Line) []Line {
	byComponent := make(map[string]Line, len(saved))
	for _, line := range saved {
		byComponent[line.ComponentID] = line
	}

	out := make([]Line, 0, len(master))
	seen := make(map[string]bool, len(master))
	for _, component := range master {
		seen[component.ID] = true
		line := Line{
			ComponentID:   component.ID,
			Name:          component.Name,
			ComponentType: component.ComponentType,
			Amount:        0,
		}
		if savedLine, ok := byComponent[component.ID]; ok {
			line.Amount = savedLine.Amount
		}
		out = append(out, line)
	}

	for _, line := range saved {
		if !seen[line.ComponentID] {
			out = append(out, line)
		}
	}
	return out
}

// Totals sums the merged lines by component type.
func Totals(lines []Line) (allowances, deductions float64) {
	for _, line := range lines {
		switch line.ComponentType {
		case ComponentTypeAllowance:
			allowances += line.Amount
		case ComponentTypeDeduction:
			deductions += line.Amount
		}
	}
	return allowances, deductions
}
