// ABOUTME: Pipeline stage enum for deals
// ABOUTME: Fixed ordered stage set with parsing and exhaustive helpers
package models

import "strings"

// Stage is one of the six fixed pipeline phases a deal occupies.
type Stage string

const (
	StageLead        Stage = "Lead"
	StageQualified   Stage = "Qualified"
	StageProposal    Stage = "Proposal"
	StageNegotiation Stage = "Negotiation"
	StageClosedWon   Stage = "Closed Won"
	StageClosedLost  Stage = "Closed Lost"
)

var stageOrder = [...]Stage{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// Stages returns the pipeline stages in board order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder[:])
	return out
}

// Valid reports whether s is a member of the fixed stage set.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Index returns the board position of s, or -1 for an unknown stage.
func (s Stage) Index() int {
	switch s {
	case StageLead:
		return 0
	case StageQualified:
		return 1
	case StageProposal:
		return 2
	case StageNegotiation:
		return 3
	case StageClosedWon:
		return 4
	case StageClosedLost:
		return 5
	}
	return -1
}

func (s Stage) IsClosed() bool {
	switch s {
	case StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// Color is the board color for the stage, as a hex RGB string.
func (s Stage) Color() string {
	switch s {
	case StageLead:
		return "#F59E0B"
	case StageQualified:
		return "#3B82F6"
	case StageProposal:
		return "#7C3AED"
	case StageNegotiation:
		return "#F97316"
	case StageClosedWon:
		return "#10B981"
	case StageClosedLost:
		return "#EF4444"
	}
	return "#6B7280"
}

// LookupStage matches user input against the stage set. It accepts the canonical
// names as well as case-insensitive and snake_case spellings ("closed_won").
func LookupStage(input string) (Stage, bool) {
	s := Stage(input)
	if s.Valid() {
		return s, true
	}
	norm := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(input, "_", " ")))
	for _, st := range stageOrder {
		if strings.ToLower(string(st)) == norm {
			return st, true
		}
	}
	return "", false
}
