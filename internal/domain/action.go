package domain

import "github.com/pkg/errors"

// Action represents the trading action chosen for a cycle.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

// action string constants, matching the model reply contract (case-sensitive).
const (
	actionStringBuy  = "Buy"
	actionStringSell = "Sell"
	actionStringHold = "Hold"
)

// ParseAction converts a model reply action string into a typed Action.
// Only the three exact enumerated values are accepted.
func ParseAction(s string) (Action, error) {
	switch s {
	case actionStringBuy:
		return ActionBuy, nil
	case actionStringSell:
		return ActionSell, nil
	case actionStringHold:
		return ActionHold, nil
	}
	return ActionHold, errors.Errorf("invalid action: %q", s)
}

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return actionStringBuy
	case ActionSell:
		return actionStringSell
	case ActionHold:
		return actionStringHold
	default:
		return "unknown"
	}
}
