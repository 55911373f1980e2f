package game

import "fmt"

type Outcome uint8

const (
	OutcomeOngoing Outcome = iota
	OutcomeCheckmate
	OutcomeReactiveMate
	OutcomeStalemate
	OutcomeRepetition
	OutcomeHalfmoveLimit
	OutcomeDeadPosition
	OutcomeResignation
	OutcomeAdjudicated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomeCheckmate:
		return "checkmate"
	case OutcomeReactiveMate:
		return "reactive-mate"
	case OutcomeStalemate:
		return "stalemate"
	case OutcomeRepetition:
		return "repetition"
	case OutcomeHalfmoveLimit:
		return "halfmove-limit"
	case OutcomeDeadPosition:
		return "dead-position"
	case OutcomeResignation:
		return "resignation"
	case OutcomeAdjudicated:
		return "adjudicated"
	default:
		return fmt.Sprintf("outcome(%d)", o)
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(text []byte) error {
	for cand := OutcomeOngoing; cand <= OutcomeAdjudicated; cand++ {
		if cand.String() == string(text) {
			*o = cand
			return nil
		}
	}
	return fmt.Errorf("invalid outcome %q", string(text))
}

type Result struct {
	Outcome   Outcome `json:"outcome"`
	Winner    Color   `json:"winner"`
	HasWinner bool    `json:"hasWinner"`
}

func (r Result) Over() bool { return r.Outcome != OutcomeOngoing }

func (r Result) String() string {
	if !r.Over() {
		return "ongoing"
	}
	if r.HasWinner {
		return fmt.Sprintf("%s: %s wins", r.Outcome, r.Winner)
	}
	return fmt.Sprintf("draw by %s", r.Outcome)
}

func wonBy(winner Color, outcome Outcome) Result {
	return Result{Outcome: outcome, Winner: winner, HasWinner: true}
}

func drawnBy(outcome Outcome) Result {
	return Result{Outcome: outcome}
}
