package game

import "fmt"

// resolveReactive gives the opponent's king its in-turn escape when the
// primary and forced moves left it in check. The escape is a plain
// one-square king move; castling is excluded. No escape means immediate
// mate, with the board left as the checking moves made it.
func (g *Game) resolveReactive(pos *Position, ent *EntanglementMap, rec *TurnRecord) (string, error) {
	defender := rec.Mover.Opposite()
	if !pos.InCheck(defender) {
		return "", nil
	}
	rec.ReactiveOwed = true

	kingID := WhiteKingID
	if defender == Black {
		kingID = BlackKingID
	}
	candidates := pos.LegalMovesForPiece(kingID)
	steps := candidates[:0]
	for _, m := range candidates {
		if m.Kind != MoveCastle {
			steps = append(steps, m)
		}
	}
	if len(steps) == 0 {
		rec.ReactiveMate = true
		return "", nil
	}

	escape, err := g.selectors[defender.Index()].Select(pos, steps)
	if err != nil {
		g.finish(wonBy(defender.Opposite(), OutcomeResignation))
		return "", nil
	}
	if !containsMove(steps, escape) {
		return "", fmt.Errorf("%w: selector returned unlisted move %s", ErrCorruptState, escape)
	}

	san := sanMove(pos, escape)
	next, err := pos.Apply(escape)
	if err != nil {
		return "", err
	}
	*pos = next
	rec.Reactive = &escape
	rec.Breaks = appendBreaks(rec.Breaks, ent, escape)
	return san, nil
}
