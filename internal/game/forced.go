package game

import "fmt"

// resolveForced runs the entanglement response owed by the primary move.
// The trigger is the piece that physically moved; castling hands the
// trigger to the rook. A counterpart with no legal move leaves the board
// untouched and the debt recorded as unpayable.
//
// Returns the SAN of the forced reply, taken against the position it was
// played from, for the turn notation.
func (g *Game) resolveForced(pos *Position, ent *EntanglementMap, rec *TurnRecord, primary Move) (string, error) {
	trigger := primary.Piece
	if primary.Kind == MoveCastle {
		rook, ok := pos.PieceAt(primary.RookTo)
		if !ok || rook.Type != Rook {
			return "", fmt.Errorf("%w: castled rook missing at %s", ErrCorruptState, primary.RookTo)
		}
		trigger = rook.ID
	}

	cp, linked := ent.Counterpart(trigger)
	if !linked {
		return "", nil
	}
	rec.ForcedOwed = true

	replies := pos.LegalMovesForPiece(cp)
	if len(replies) == 0 {
		return "", nil
	}

	owner := pos.PieceByID(cp).Color
	reply, err := g.selectors[owner.Index()].Select(pos, replies)
	if err != nil {
		g.finish(wonBy(owner.Opposite(), OutcomeResignation))
		return "", nil
	}
	if !containsMove(replies, reply) {
		return "", fmt.Errorf("%w: selector returned unlisted move %s", ErrCorruptState, reply)
	}

	san := sanMove(pos, reply)
	next, err := pos.Apply(reply)
	if err != nil {
		return "", err
	}
	*pos = next
	rec.Forced = &reply
	rec.Breaks = appendBreaks(rec.Breaks, ent, reply)
	return san, nil
}
