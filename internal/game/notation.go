package game

import "strings"

// sanMove renders a move in algebraic notation against the position it is
// about to be played from. Check and mate suffixes are left off; the turn
// notation carries that information in its reactive segment.
func sanMove(p *Position, m Move) string {
	if m.Kind == MoveCastle {
		if m.Side == CastleQueenside {
			return "O-O-O"
		}
		return "O-O"
	}

	pc := p.PieceByID(m.Piece)
	var b strings.Builder

	if pc.Type == Pawn {
		if m.HasCaptured {
			b.WriteByte(byte('a' + m.From.File()))
			b.WriteByte('x')
		}
		b.WriteString(m.To.String())
		if m.Kind == MovePromotion {
			b.WriteByte('=')
			b.WriteString(m.Promotion.String())
		}
		return b.String()
	}

	b.WriteString(pc.Type.String())
	b.WriteString(disambiguation(p, m))
	if m.HasCaptured {
		b.WriteByte('x')
	}
	b.WriteString(m.To.String())
	return b.String()
}

// disambiguation resolves sibling ambiguity the standard way: file first,
// then rank, then both.
func disambiguation(p *Position, m Move) string {
	pc := p.PieceByID(m.Piece)
	var rivals []Square
	for i := 0; i < pieceCount; i++ {
		other := p.PieceByID(PieceID(i))
		if other.ID == pc.ID || !other.Alive || other.Color != pc.Color || other.Type != pc.Type {
			continue
		}
		for _, cand := range p.LegalMovesForPiece(other.ID) {
			if cand.To == m.To {
				rivals = append(rivals, other.Square)
				break
			}
		}
	}
	if len(rivals) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range rivals {
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string([]byte{byte('a' + m.From.File())})
	case !sameRank:
		return string([]byte{byte('1' + m.From.Rank())})
	default:
		return m.From.String()
	}
}

// extendedNotation assembles the turn notation: primary SAN, then the
// forced segment in brackets ("[--]" when the debt had no legal reply),
// then the reactive segment in angle brackets ("<#>" on reactive mate).
func extendedNotation(rec *TurnRecord, primary, forced, reactive string) string {
	var b strings.Builder
	b.WriteString(primary)
	if rec.ForcedOwed {
		if rec.Forced != nil {
			b.WriteString(" [")
			b.WriteString(forced)
			b.WriteByte(']')
		} else {
			b.WriteString(" [--]")
		}
	}
	if rec.ReactiveOwed {
		if rec.Reactive != nil {
			b.WriteString(" <")
			b.WriteString(reactive)
			b.WriteByte('>')
		} else {
			b.WriteString(" <#>")
		}
	}
	return b.String()
}
