package game

// GameState is the serializable view of a game, shaped for JSON clients.
type GameState struct {
	Turn      Color           `json:"turn"`
	Phase     Phase           `json:"phase"`
	Pieces    []Piece         `json:"pieces"`
	Links     [][2]PieceID    `json:"links"`
	Castling  CastlingRights  `json:"castling"`
	EnPassant EnPassantTarget `json:"enPassant"`
	Halfmove  int             `json:"halfmove"`
	Fullmove  int             `json:"fullmove"`
	InCheck   bool            `json:"inCheck"`
	Result    Result          `json:"result"`
	FEN       string          `json:"fen"`
	Turns     []TurnRecord    `json:"turns"`
}

func (g *Game) Snapshot() GameState {
	return GameState{
		Turn:      g.pos.Turn(),
		Phase:     g.phase,
		Pieces:    g.pos.Pieces(nil),
		Links:     g.ent.Pairs(),
		Castling:  g.pos.Castling(),
		EnPassant: g.pos.EnPassant(),
		Halfmove:  g.pos.HalfmoveClock(),
		Fullmove:  g.pos.FullmoveNumber(),
		InCheck:   g.pos.InCheck(g.pos.Turn()),
		Result:    g.result,
		FEN:       g.pos.FEN(),
		Turns:     g.records,
	}
}

// Stats aggregates a finished game's records into the summary counts the
// store persists.
type Stats struct {
	TotalTurns    int    `json:"totalTurns"`
	ForcedMoves   int    `json:"forcedMoves"`
	ReactiveMoves int    `json:"reactiveMoves"`
	Captures      int    `json:"captures"`
	Promotions    int    `json:"promotions"`
	LinkBreaks    int    `json:"linkBreaks"`
	FinalFEN      string `json:"finalFen"`
	FinalLinkKey  uint64 `json:"finalLinkKey"`
}

func (g *Game) Stats() Stats {
	s := Stats{
		TotalTurns:   len(g.records),
		FinalFEN:     g.pos.FEN(),
		FinalLinkKey: g.ent.Key(),
	}
	for i := range g.records {
		rec := &g.records[i]
		if rec.Forced != nil {
			s.ForcedMoves++
		}
		if rec.Reactive != nil {
			s.ReactiveMoves++
		}
		s.LinkBreaks += len(rec.Breaks)
		for _, m := range []*Move{&rec.Primary, rec.Forced, rec.Reactive} {
			if m == nil {
				continue
			}
			if m.HasCaptured {
				s.Captures++
			}
			if m.Kind == MovePromotion {
				s.Promotions++
			}
		}
	}
	return s
}
