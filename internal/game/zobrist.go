package game

// Zobrist keys for position fingerprints. The tables are filled from a
// fixed-seed xorshift64* generator so fingerprints are stable across runs
// and platforms; link keys extend the usual scheme so that two states with
// the same placement but different surviving links hash apart.

var (
	zobristPieces      [2][6][64]uint64
	zobristCastling    [16]uint64
	zobristEnPassant   [8]uint64
	zobristBlackToMove uint64
	zobristLinks       [pieceCount][pieceCount]uint64
)

func init() {
	state := uint64(0x9e3779b97f4a7c15)
	next := func() uint64 {
		state ^= state >> 12
		state ^= state << 25
		state ^= state >> 27
		return state * 0x2545f4914f6cdd1d
	}

	for c := 0; c < 2; c++ {
		for t := 0; t < 6; t++ {
			for sq := 0; sq < 64; sq++ {
				zobristPieces[c][t][sq] = next()
			}
		}
	}
	for i := range zobristCastling {
		zobristCastling[i] = next()
	}
	for i := range zobristEnPassant {
		zobristEnPassant[i] = next()
	}
	zobristBlackToMove = next()
	for a := 0; a < pieceCount; a++ {
		for b := 0; b < pieceCount; b++ {
			zobristLinks[a][b] = next()
		}
	}
}

// Hash fingerprints piece placement, castling rights, the en passant
// target, and the side to move. Entanglement is hashed separately; see
// EntanglementMap.Key.
func (p *Position) Hash() uint64 {
	var h uint64
	for i := range p.pieces {
		pc := &p.pieces[i]
		if !pc.Alive {
			continue
		}
		h ^= zobristPieces[pc.Color.Index()][pc.Type][pc.Square]
	}
	h ^= zobristCastling[(p.castling&CastlingAll)>>1]
	if sq, ok := p.enPassant.Square(); ok {
		h ^= zobristEnPassant[sq.File()]
	}
	if p.turn == Black {
		h ^= zobristBlackToMove
	}
	return h
}

// linkKey is symmetric in its arguments.
func linkKey(a, b PieceID) uint64 {
	if a > b {
		a, b = b, a
	}
	return zobristLinks[a][b]
}
