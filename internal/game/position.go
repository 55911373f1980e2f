package game

import "fmt"

// Position is an immutable board state. Apply returns a fresh Position and
// never mutates its receiver, so callers can keep any number of positions
// alive at once (trial moves, history, repetition checks).
//
// The side-to-move field only flips when a whole turn completes; the turn
// orchestrator applies primary, forced, and reactive moves against the same
// nominal mover before advancing.
type Position struct {
	pieces    [pieceCount]Piece
	squares   [64]int8
	turn      Color
	castling  CastlingRights
	enPassant EnPassantTarget
	halfmove  int
	fullmove  int
}

// startLayout lists each starting square in PieceID order: white back rank
// a1..h1, white pawns a2..h2, black back rank a8..h8, black pawns a7..h7.
var startLayout = [pieceCount]struct {
	color  Color
	typ    PieceType
	square Square
}{
	{White, Rook, sqA1}, {White, Knight, sqB1}, {White, Bishop, sqC1}, {White, Queen, sqD1},
	{White, King, sqE1}, {White, Bishop, sqF1}, {White, Knight, sqG1}, {White, Rook, sqH1},
	{White, Pawn, 8}, {White, Pawn, 9}, {White, Pawn, 10}, {White, Pawn, 11},
	{White, Pawn, 12}, {White, Pawn, 13}, {White, Pawn, 14}, {White, Pawn, 15},
	{Black, Rook, 56}, {Black, Knight, 57}, {Black, Bishop, 58}, {Black, Queen, 59},
	{Black, King, 60}, {Black, Bishop, 61}, {Black, Knight, 62}, {Black, Rook, 63},
	{Black, Pawn, 48}, {Black, Pawn, 49}, {Black, Pawn, 50}, {Black, Pawn, 51},
	{Black, Pawn, 52}, {Black, Pawn, 53}, {Black, Pawn, 54}, {Black, Pawn, 55},
}

func StartingPosition() Position {
	var p Position
	for i := range p.squares {
		p.squares[i] = noOccupant
	}
	for id, entry := range startLayout {
		p.pieces[id] = Piece{
			ID:     PieceID(id),
			Color:  entry.color,
			Type:   entry.typ,
			Square: entry.square,
			Alive:  true,
		}
		p.squares[entry.square] = int8(id)
	}
	p.turn = White
	p.castling = CastlingAll
	p.enPassant = NoEnPassantTarget()
	p.fullmove = 1
	return p
}

func (p *Position) Turn() Color                { return p.turn }
func (p *Position) Castling() CastlingRights   { return p.castling }
func (p *Position) EnPassant() EnPassantTarget { return p.enPassant }
func (p *Position) HalfmoveClock() int         { return p.halfmove }
func (p *Position) FullmoveNumber() int        { return p.fullmove }

func (p *Position) PieceAt(sq Square) (Piece, bool) {
	idx := p.squares[sq]
	if idx == noOccupant {
		return Piece{}, false
	}
	return p.pieces[idx], true
}

func (p *Position) PieceByID(id PieceID) Piece { return p.pieces[id] }

func (p *Position) KingSquare(color Color) Square {
	if color == White {
		return p.pieces[WhiteKingID].Square
	}
	return p.pieces[BlackKingID].Square
}

// Pieces appends all living pieces to dst and returns it.
func (p *Position) Pieces(dst []Piece) []Piece {
	for i := range p.pieces {
		if p.pieces[i].Alive {
			dst = append(dst, p.pieces[i])
		}
	}
	return dst
}

// Apply executes a generated move and returns the resulting position. The
// side-to-move field is untouched; see advance. Apply trusts the generator
// for legality but verifies the move still matches the board, returning
// ErrCorruptState when it does not.
func (p Position) Apply(m Move) (Position, error) {
	pc := p.pieces[m.Piece]
	if !pc.Alive || pc.Square != m.From {
		return Position{}, fmt.Errorf("%w: piece %d not at %s", ErrCorruptState, m.Piece, m.From)
	}

	p.enPassant = NoEnPassantTarget()
	resetClock := pc.Type == Pawn || m.HasCaptured

	if victim, ok := m.CapturedPiece(); ok {
		vp := p.pieces[victim]
		if !vp.Alive {
			return Position{}, fmt.Errorf("%w: captured piece %d not alive", ErrCorruptState, victim)
		}
		if vp.Type == Rook {
			p.castling = p.castling.Without(rookHomeRight(vp.Square))
		}
		p.removePiece(victim)
	}

	switch m.Kind {
	case MoveQuiet, MoveCapture, MoveEnPassant:
		p.movePiece(m.Piece, m.To)
	case MoveDoublePush:
		p.movePiece(m.Piece, m.To)
		mid := Square((int(m.From) + int(m.To)) / 2)
		p.enPassant = NewEnPassantTarget(mid)
	case MovePromotion:
		p.movePiece(m.Piece, m.To)
		p.pieces[m.Piece].Type = m.Promotion
	case MoveCastle:
		rook := p.squares[m.RookFrom]
		if rook == noOccupant || p.pieces[rook].Type != Rook {
			return Position{}, fmt.Errorf("%w: no rook at %s", ErrCorruptState, m.RookFrom)
		}
		p.movePiece(m.Piece, m.To)
		p.movePiece(PieceID(rook), m.RookTo)
	default:
		return Position{}, fmt.Errorf("%w: unknown move kind %d", ErrCorruptState, m.Kind)
	}

	switch pc.Type {
	case King:
		p.castling = p.castling.WithoutColor(pc.Color)
	case Rook:
		p.castling = p.castling.Without(rookHomeRight(m.From))
	}

	if resetClock {
		p.halfmove = 0
	} else {
		p.halfmove++
	}
	return p, nil
}

// advance hands the move over to the other side. Called once per completed
// turn, not per applied move.
func (p Position) advance() Position {
	if p.turn == Black {
		p.fullmove++
	}
	p.turn = p.turn.Opposite()
	return p
}

func (p *Position) movePiece(id PieceID, to Square) {
	from := p.pieces[id].Square
	p.squares[from] = noOccupant
	p.squares[to] = int8(id)
	p.pieces[id].Square = to
}

func (p *Position) removePiece(id PieceID) {
	p.squares[p.pieces[id].Square] = noOccupant
	p.pieces[id].Alive = false
}

func rookHomeRight(sq Square) CastlingRights {
	switch sq {
	case sqA1:
		return CastlingWhiteQueenside
	case sqH1:
		return CastlingWhiteKingside
	case sqA8:
		return CastlingBlackQueenside
	case sqH8:
		return CastlingBlackKingside
	default:
		return CastlingNone
	}
}

// validate checks the structural invariants between the piece table and the
// square index. It is cheap enough to run in tests after every turn.
func (p *Position) validate() error {
	var seen [64]bool
	kings := [2]int{}
	for i := range p.pieces {
		pc := &p.pieces[i]
		if pc.ID != PieceID(i) {
			return fmt.Errorf("%w: piece %d carries id %d", ErrCorruptState, i, pc.ID)
		}
		if !pc.Alive {
			continue
		}
		if seen[pc.Square] {
			return fmt.Errorf("%w: square %s doubly occupied", ErrCorruptState, pc.Square)
		}
		seen[pc.Square] = true
		if p.squares[pc.Square] != int8(i) {
			return fmt.Errorf("%w: index mismatch at %s", ErrCorruptState, pc.Square)
		}
		if pc.Type == King {
			kings[pc.Color.Index()]++
		}
	}
	for sq, idx := range p.squares {
		if idx != noOccupant && !seen[sq] {
			return fmt.Errorf("%w: stale occupant at %s", ErrCorruptState, Square(sq))
		}
	}
	if kings[0] != 1 || kings[1] != 1 {
		return fmt.Errorf("%w: king count white=%d black=%d", ErrCorruptState, kings[0], kings[1])
	}
	return nil
}
