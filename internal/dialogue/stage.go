package dialogue

import "strconv"

// Kind names a position in a flow. Each flow declares the closed set of kinds it uses.
type Kind string

// KindIdle is the stage of a user outside any multi-step conversation
const KindIdle Kind = "idle"

// Stage is a kind plus an index for linear chains (question number, category, recipe step)
type Stage struct {
	Kind  Kind
	Index int
}

// Idle is the zero position of every flow
var Idle = Stage{Kind: KindIdle}

// At returns the stage of kind k at index i
func (k Kind) At(i int) Stage {
	return Stage{Kind: k, Index: i}
}

// Stage returns the first stage of kind k
func (k Kind) Stage() Stage {
	return Stage{Kind: k}
}

func (s Stage) String() string {
	if s.Index == 0 {
		return string(s.Kind)
	}
	return string(s.Kind) + "#" + strconv.Itoa(s.Index)
}
