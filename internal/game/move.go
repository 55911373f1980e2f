package game

import "fmt"

// PieceID is a stable identity assigned at setup. It survives moves and
// promotions; entanglement links are keyed on it.
type PieceID uint8

const (
	pieceCount = 32

	WhiteKingID PieceID = 4
	BlackKingID PieceID = 20
)

const noOccupant int8 = -1

type Piece struct {
	ID     PieceID   `json:"id"`
	Color  Color     `json:"color"`
	Type   PieceType `json:"type"`
	Square Square    `json:"square"`
	Alive  bool      `json:"alive"`
}

type MoveKind uint8

const (
	MoveQuiet MoveKind = iota
	MoveCapture
	MoveDoublePush
	MoveEnPassant
	MoveCastle
	MovePromotion
)

func (k MoveKind) String() string {
	switch k {
	case MoveQuiet:
		return "quiet"
	case MoveCapture:
		return "capture"
	case MoveDoublePush:
		return "double-push"
	case MoveEnPassant:
		return "en-passant"
	case MoveCastle:
		return "castle"
	case MovePromotion:
		return "promotion"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

func (k MoveKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *MoveKind) UnmarshalText(text []byte) error {
	for cand := MoveQuiet; cand <= MovePromotion; cand++ {
		if cand.String() == string(text) {
			*k = cand
			return nil
		}
	}
	return fmt.Errorf("invalid move kind %q", string(text))
}

// Move is a fully resolved move produced by the generator. Every payload
// field is populated by the generator; callers never construct moves by
// hand outside of tests.
type Move struct {
	Kind  MoveKind `json:"kind"`
	Piece PieceID  `json:"piece"`
	From  Square   `json:"from"`
	To    Square   `json:"to"`

	// Captured is set for MoveCapture, MoveEnPassant, and capturing
	// promotions. For en passant the victim square differs from To.
	Captured    PieceID `json:"captured,omitempty"`
	HasCaptured bool    `json:"hasCaptured,omitempty"`

	// Promotion is set for MovePromotion.
	Promotion PieceType `json:"promotion,omitempty"`

	// Castle payload.
	Side     CastlingSide `json:"-"`
	RookFrom Square       `json:"rookFrom,omitempty"`
	RookTo   Square       `json:"rookTo,omitempty"`
}

func (m Move) CapturedPiece() (PieceID, bool) {
	if !m.HasCaptured {
		return 0, false
	}
	return m.Captured, true
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Kind == MovePromotion {
		s += "=" + m.Promotion.String()
	}
	return s
}

// MoveRequest is the external form of a primary move: origin, destination,
// and a promotion piece when the move promotes.
type MoveRequest struct {
	From         Square    `json:"from"`
	To           Square    `json:"to"`
	Promotion    PieceType `json:"promotion,omitempty"`
	HasPromotion bool      `json:"hasPromotion,omitempty"`
}

// matchRequest resolves a request against the generated legal moves.
func matchRequest(moves []Move, req MoveRequest) (Move, error) {
	promoting := false
	for _, m := range moves {
		if m.From != req.From || m.To != req.To {
			continue
		}
		if m.Kind == MovePromotion {
			promoting = true
			if req.HasPromotion && m.Promotion == req.Promotion {
				return m, nil
			}
			continue
		}
		return m, nil
	}
	if promoting && !req.HasPromotion {
		return Move{}, ErrPromotionRequired
	}
	return Move{}, ErrInvalidMove
}
