package game

import (
	"fmt"
	"strings"
)

// FEN renders the position in Forsyth-Edwards notation. Used for logging
// and persisted game summaries; there is no parser because games always
// start from the standard placement.
func (p *Position) FEN() string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq, _ := SquareFromCoords(rank, file)
			pc, ok := p.PieceAt(sq)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			letter := pc.Type.String()
			if pc.Color == Black {
				letter = strings.ToLower(letter)
			}
			b.WriteString(letter)
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}

	side := "w"
	if p.turn == Black {
		side = "b"
	}
	fmt.Fprintf(&b, " %s %s %s %d %d", side, p.castling, p.enPassant, p.halfmove, p.fullmove)
	return b.String()
}
