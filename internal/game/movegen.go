package game

type moveDelta struct {
	dr int
	df int
}

var (
	rookDirections = [...]moveDelta{
		{dr: 1, df: 0},
		{dr: -1, df: 0},
		{dr: 0, df: 1},
		{dr: 0, df: -1},
	}
	bishopDirections = [...]moveDelta{
		{dr: 1, df: 1},
		{dr: 1, df: -1},
		{dr: -1, df: 1},
		{dr: -1, df: -1},
	}
	knightOffsets = [...]moveDelta{
		{dr: 2, df: 1},
		{dr: 1, df: 2},
		{dr: -1, df: 2},
		{dr: -2, df: 1},
		{dr: -2, df: -1},
		{dr: -1, df: -2},
		{dr: 1, df: -2},
		{dr: 2, df: -1},
	}
	kingOffsets = [...]moveDelta{
		{dr: 1, df: 0}, {dr: 1, df: 1}, {dr: 0, df: 1}, {dr: -1, df: 1},
		{dr: -1, df: 0}, {dr: -1, df: -1}, {dr: 0, df: -1}, {dr: 1, df: -1},
	}
)

var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard
)

func init() {
	for sq := Square(0); sq < 64; sq++ {
		rank, file := sq.Rank(), sq.File()
		for _, d := range knightOffsets {
			if t, ok := SquareFromCoords(rank+d.dr, file+d.df); ok {
				knightAttacks[sq] = knightAttacks[sq].Add(t)
			}
		}
		for _, d := range kingOffsets {
			if t, ok := SquareFromCoords(rank+d.dr, file+d.df); ok {
				kingAttacks[sq] = kingAttacks[sq].Add(t)
			}
		}
		for _, df := range [...]int{-1, 1} {
			if t, ok := SquareFromCoords(rank+1, file+df); ok {
				pawnAttacks[White.Index()][sq] = pawnAttacks[White.Index()][sq].Add(t)
			}
			if t, ok := SquareFromCoords(rank-1, file+df); ok {
				pawnAttacks[Black.Index()][sq] = pawnAttacks[Black.Index()][sq].Add(t)
			}
		}
	}
}

func pawnAdvance(color Color) int {
	if color == White {
		return 1
	}
	return -1
}

func pawnStartRank(color Color) int {
	if color == White {
		return 1
	}
	return 6
}

func pawnPromotionRank(color Color) int {
	if color == White {
		return 7
	}
	return 0
}

// LegalMoves returns every legal move for the given side, in deterministic
// order: piece id ascending, then generation order within a piece.
func (p *Position) LegalMoves(side Color) []Move {
	var out []Move
	for i := range p.pieces {
		pc := &p.pieces[i]
		if !pc.Alive || pc.Color != side {
			continue
		}
		out = p.appendLegalMoves(out, pc.ID)
	}
	return out
}

// LegalMovesForPiece returns the legal moves of a single piece, filtered
// against its own king's safety only.
func (p *Position) LegalMovesForPiece(id PieceID) []Move {
	return p.appendLegalMoves(nil, id)
}

func (p *Position) appendLegalMoves(dst []Move, id PieceID) []Move {
	for _, m := range p.pseudoMoves(id) {
		if p.leavesKingInCheck(m) {
			continue
		}
		dst = append(dst, m)
	}
	return dst
}

func (p *Position) leavesKingInCheck(m Move) bool {
	next, err := p.Apply(m)
	if err != nil {
		return true
	}
	return next.InCheck(p.pieces[m.Piece].Color)
}

func (p *Position) pseudoMoves(id PieceID) []Move {
	pc := p.pieces[id]
	if !pc.Alive {
		return nil
	}
	switch pc.Type {
	case Pawn:
		return p.pawnMoves(pc)
	case Knight:
		return p.leaperMoves(pc, knightAttacks[pc.Square])
	case Bishop:
		return p.slidingMoves(pc, bishopDirections[:])
	case Rook:
		return p.slidingMoves(pc, rookDirections[:])
	case Queen:
		moves := p.slidingMoves(pc, rookDirections[:])
		return append(moves, p.slidingMoves(pc, bishopDirections[:])...)
	case King:
		return p.kingMoves(pc)
	default:
		return nil
	}
}

func (p *Position) pawnMoves(pc Piece) []Move {
	var moves []Move
	dir := pawnAdvance(pc.Color)
	rank := pc.Square.Rank()
	file := pc.Square.File()
	promoRank := pawnPromotionRank(pc.Color)

	if one, ok := SquareFromCoords(rank+dir, file); ok && p.squares[one] == noOccupant {
		if one.Rank() == promoRank {
			moves = appendPromotions(moves, pc.ID, pc.Square, one, 0, false)
		} else {
			moves = append(moves, Move{Kind: MoveQuiet, Piece: pc.ID, From: pc.Square, To: one})
		}
		if rank == pawnStartRank(pc.Color) {
			if two, ok := SquareFromCoords(rank+2*dir, file); ok && p.squares[two] == noOccupant {
				moves = append(moves, Move{Kind: MoveDoublePush, Piece: pc.ID, From: pc.Square, To: two})
			}
		}
	}

	for _, df := range [...]int{-1, 1} {
		target, ok := SquareFromCoords(rank+dir, file+df)
		if !ok {
			continue
		}
		if occ, found := p.PieceAt(target); found {
			if occ.Color != pc.Color && occ.Type != King {
				if target.Rank() == promoRank {
					moves = appendPromotions(moves, pc.ID, pc.Square, target, occ.ID, true)
				} else {
					moves = append(moves, Move{
						Kind: MoveCapture, Piece: pc.ID, From: pc.Square, To: target,
						Captured: occ.ID, HasCaptured: true,
					})
				}
			}
			continue
		}
		if ep, valid := p.enPassant.Square(); valid && ep == target {
			victimSq, ok := SquareFromCoords(rank, file+df)
			if !ok {
				continue
			}
			victim, found := p.PieceAt(victimSq)
			if !found || victim.Type != Pawn || victim.Color == pc.Color {
				continue
			}
			moves = append(moves, Move{
				Kind: MoveEnPassant, Piece: pc.ID, From: pc.Square, To: target,
				Captured: victim.ID, HasCaptured: true,
			})
		}
	}
	return moves
}

func appendPromotions(dst []Move, id PieceID, from, to Square, victim PieceID, capture bool) []Move {
	for _, pt := range promotionOrder {
		dst = append(dst, Move{
			Kind: MovePromotion, Piece: id, From: from, To: to,
			Captured: victim, HasCaptured: capture, Promotion: pt,
		})
	}
	return dst
}

func (p *Position) leaperMoves(pc Piece, targets Bitboard) []Move {
	var moves []Move
	targets.Iter(func(to Square) {
		occ, found := p.PieceAt(to)
		switch {
		case !found:
			moves = append(moves, Move{Kind: MoveQuiet, Piece: pc.ID, From: pc.Square, To: to})
		case occ.Color != pc.Color && occ.Type != King:
			moves = append(moves, Move{
				Kind: MoveCapture, Piece: pc.ID, From: pc.Square, To: to,
				Captured: occ.ID, HasCaptured: true,
			})
		}
	})
	return moves
}

func (p *Position) slidingMoves(pc Piece, directions []moveDelta) []Move {
	var moves []Move
	startRank := pc.Square.Rank()
	startFile := pc.Square.File()
	for _, d := range directions {
		rank, file := startRank, startFile
		for {
			rank += d.dr
			file += d.df
			to, ok := SquareFromCoords(rank, file)
			if !ok {
				break
			}
			occ, found := p.PieceAt(to)
			if !found {
				moves = append(moves, Move{Kind: MoveQuiet, Piece: pc.ID, From: pc.Square, To: to})
				continue
			}
			if occ.Color != pc.Color && occ.Type != King {
				moves = append(moves, Move{
					Kind: MoveCapture, Piece: pc.ID, From: pc.Square, To: to,
					Captured: occ.ID, HasCaptured: true,
				})
			}
			break
		}
	}
	return moves
}

func (p *Position) kingMoves(pc Piece) []Move {
	moves := p.leaperMoves(pc, kingAttacks[pc.Square])
	if m, ok := p.castleMove(pc, CastleKingside); ok {
		moves = append(moves, m)
	}
	if m, ok := p.castleMove(pc, CastleQueenside); ok {
		moves = append(moves, m)
	}
	return moves
}

// castleMove validates everything except the king's destination square,
// which the usual legality filter covers: rights, rook presence, empty
// lane, king not in check, transit square not attacked.
func (p *Position) castleMove(pc Piece, side CastlingSide) (Move, bool) {
	if pc.Type != King || !p.castling.HasSide(pc.Color, side) {
		return Move{}, false
	}
	home := sqE1
	if pc.Color == Black {
		home = sqE8
	}
	if pc.Square != home {
		return Move{}, false
	}

	var rookFrom, rookTo, kingTo Square
	rank := home.Rank()
	if side == CastleKingside {
		rookFrom, _ = SquareFromCoords(rank, 7)
		rookTo, _ = SquareFromCoords(rank, 5)
		kingTo, _ = SquareFromCoords(rank, 6)
	} else {
		rookFrom, _ = SquareFromCoords(rank, 0)
		rookTo, _ = SquareFromCoords(rank, 3)
		kingTo, _ = SquareFromCoords(rank, 2)
	}

	rook, found := p.PieceAt(rookFrom)
	if !found || rook.Type != Rook || rook.Color != pc.Color {
		return Move{}, false
	}
	for _, sq := range Line(home, rookFrom) {
		if p.squares[sq] != noOccupant {
			return Move{}, false
		}
	}

	enemy := pc.Color.Opposite()
	if p.IsAttacked(home, enemy) || p.IsAttacked(rookTo, enemy) {
		return Move{}, false
	}

	return Move{
		Kind: MoveCastle, Piece: pc.ID, From: home, To: kingTo,
		Side: side, RookFrom: rookFrom, RookTo: rookTo,
	}, true
}

// IsAttacked reports whether any piece of color by attacks the target
// square, ignoring pins.
func (p *Position) IsAttacked(target Square, by Color) bool {
	for bb := pawnAttacks[by.Opposite().Index()][target]; !bb.Empty(); {
		var sq Square
		sq, bb = bb.PopLSB()
		if occ, found := p.PieceAt(sq); found && occ.Color == by && occ.Type == Pawn {
			return true
		}
	}
	for bb := knightAttacks[target]; !bb.Empty(); {
		var sq Square
		sq, bb = bb.PopLSB()
		if occ, found := p.PieceAt(sq); found && occ.Color == by && occ.Type == Knight {
			return true
		}
	}
	for bb := kingAttacks[target]; !bb.Empty(); {
		var sq Square
		sq, bb = bb.PopLSB()
		if occ, found := p.PieceAt(sq); found && occ.Color == by && occ.Type == King {
			return true
		}
	}
	if p.slidingAttack(target, by, rookDirections[:], Rook) {
		return true
	}
	return p.slidingAttack(target, by, bishopDirections[:], Bishop)
}

func (p *Position) slidingAttack(target Square, by Color, directions []moveDelta, slider PieceType) bool {
	startRank := target.Rank()
	startFile := target.File()
	for _, d := range directions {
		rank, file := startRank, startFile
		for {
			rank += d.dr
			file += d.df
			sq, ok := SquareFromCoords(rank, file)
			if !ok {
				break
			}
			occ, found := p.PieceAt(sq)
			if !found {
				continue
			}
			if occ.Color == by && (occ.Type == slider || occ.Type == Queen) {
				return true
			}
			break
		}
	}
	return false
}

func (p *Position) InCheck(color Color) bool {
	return p.IsAttacked(p.KingSquare(color), color.Opposite())
}

// HasLegalMove is the cheap form of len(LegalMoves(side)) > 0.
func (p *Position) HasLegalMove(side Color) bool {
	for i := range p.pieces {
		pc := &p.pieces[i]
		if !pc.Alive || pc.Color != side {
			continue
		}
		for _, m := range p.pseudoMoves(pc.ID) {
			if !p.leavesKingInCheck(m) {
				return true
			}
		}
	}
	return false
}
