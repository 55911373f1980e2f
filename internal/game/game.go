package game

import "fmt"

type Phase uint8

const (
	PhaseAwaitPrimary Phase = iota
	PhaseAwaitForced
	PhaseAwaitReactive
	PhaseTurnComplete
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitPrimary:
		return "await-primary"
	case PhaseAwaitForced:
		return "await-forced"
	case PhaseAwaitReactive:
		return "await-reactive"
	case PhaseTurnComplete:
		return "turn-complete"
	case PhaseGameOver:
		return "game-over"
	default:
		return fmt.Sprintf("phase(%d)", p)
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	for cand := PhaseAwaitPrimary; cand <= PhaseGameOver; cand++ {
		if cand.String() == string(text) {
			*p = cand
			return nil
		}
	}
	return fmt.Errorf("invalid phase %q", string(text))
}

// TurnRecord is the immutable log entry for one completed turn: the
// primary move, the forced reply it owed (if any), the reactive escape,
// every link severed, and the repetition fingerprint of the resulting
// state.
type TurnRecord struct {
	Number  int   `json:"number"`
	Mover   Color `json:"mover"`
	Primary Move  `json:"primary"`

	// ForcedOwed is true when the moved piece still held a link after the
	// primary move resolved. Forced stays nil when the counterpart had no
	// legal reply.
	ForcedOwed bool  `json:"forcedOwed"`
	Forced     *Move `json:"forced,omitempty"`

	// ReactiveOwed is true when the opponent stood in check after the
	// primary and forced moves. Reactive stays nil on reactive mate.
	ReactiveOwed bool  `json:"reactiveOwed"`
	Reactive     *Move `json:"reactive,omitempty"`
	ReactiveMate bool  `json:"reactiveMate,omitempty"`

	Breaks      []LinkBreak `json:"breaks,omitempty"`
	Notation    string      `json:"notation"`
	Fingerprint uint64      `json:"fingerprint"`

	// NextMoves counts the legal moves left to the side to move after this
	// turn committed. Zero on reactive mate.
	NextMoves int `json:"nextMoves"`
}

// Game is the turn orchestrator. A turn is atomic: the primary move, the
// forced response, and the reactive escape all commit together or not at
// all. Game is not safe for concurrent use.
type Game struct {
	pos       Position
	ent       EntanglementMap
	setup     Setup
	selectors [2]MoveSelector
	seen      map[uint64]int
	records   []TurnRecord
	result    Result
	phase     Phase
}

// NewGame validates the setup and starts a game from the standard initial
// placement. The selectors answer forced and reactive choices for their
// side, and primary choices during self-play.
func NewGame(setup Setup, white, black MoveSelector) (*Game, error) {
	if white == nil || black == nil {
		return nil, fmt.Errorf("%w: nil selector", ErrInvalidSetup)
	}
	pos := StartingPosition()
	ent, err := NewEntanglementMap(&pos, setup)
	if err != nil {
		return nil, err
	}
	g := &Game{
		pos:       pos,
		ent:       ent,
		setup:     setup,
		selectors: [2]MoveSelector{white, black},
		seen:      make(map[uint64]int),
		phase:     PhaseAwaitPrimary,
	}
	g.seen[g.fingerprint()]++
	return g, nil
}

func (g *Game) Position() Position      { return g.pos }
func (g *Game) Setup() Setup            { return g.setup }
func (g *Game) Result() Result          { return g.result }
func (g *Game) Over() bool              { return g.result.Over() }
func (g *Game) Phase() Phase            { return g.phase }
func (g *Game) Records() []TurnRecord   { return g.records }
func (g *Game) Links() [][2]PieceID     { return g.ent.Pairs() }
func (g *Game) LinkFingerprint() uint64 { return g.ent.Key() }
func (g *Game) Counterpart(id PieceID) (PieceID, bool) {
	return g.ent.Counterpart(id)
}

func (g *Game) fingerprint() uint64 { return g.pos.Hash() ^ g.ent.Key() }

// Submit plays one full turn from an external primary move request. On
// success the returned record reflects everything that happened in the
// turn; on error the game state is unchanged.
func (g *Game) Submit(req MoveRequest) (*TurnRecord, error) {
	if g.Over() {
		return nil, ErrGameOver
	}
	moves := g.pos.LegalMoves(g.pos.Turn())
	m, err := matchRequest(moves, req)
	if err != nil {
		return nil, err
	}
	return g.playTurn(m)
}

// PlayTurn asks the side to move for a primary move and plays the full
// turn. A selector error resigns that side; PlayTurn then returns a nil
// record with the game marked over.
func (g *Game) PlayTurn() (*TurnRecord, error) {
	if g.Over() {
		return nil, ErrGameOver
	}
	side := g.pos.Turn()
	moves := g.pos.LegalMoves(side)
	if len(moves) == 0 {
		g.finish(g.noMoveResult(side))
		return nil, nil
	}
	m, err := g.selectors[side.Index()].Select(&g.pos, moves)
	if err != nil {
		g.finish(wonBy(side.Opposite(), OutcomeResignation))
		return nil, nil
	}
	if !containsMove(moves, m) {
		return nil, fmt.Errorf("%w: selector returned unlisted move %s", ErrCorruptState, m)
	}
	return g.playTurn(m)
}

// Adjudicate terminates an ongoing game from outside, e.g. when a runner
// hits its turn cap.
func (g *Game) Adjudicate(result Result) {
	if g.Over() {
		return
	}
	g.finish(result)
}

// playTurn runs the primary/forced/reactive pipeline on scratch copies and
// commits only when the whole turn resolved.
func (g *Game) playTurn(primary Move) (*TurnRecord, error) {
	pos := g.pos
	ent := g.ent
	rec := TurnRecord{
		Number:  len(g.records) + 1,
		Mover:   pos.Turn(),
		Primary: primary,
	}

	primarySAN := sanMove(&pos, primary)
	next, err := pos.Apply(primary)
	if err != nil {
		return nil, err
	}
	pos = next
	rec.Breaks = appendBreaks(rec.Breaks, &ent, primary)

	g.phase = PhaseAwaitForced
	forcedSAN, err := g.resolveForced(&pos, &ent, &rec, primary)
	if err != nil {
		g.phase = PhaseAwaitPrimary
		return nil, err
	}
	if g.Over() {
		return nil, nil
	}

	g.phase = PhaseAwaitReactive
	reactiveSAN, err := g.resolveReactive(&pos, &ent, &rec)
	if err != nil {
		g.phase = PhaseAwaitPrimary
		return nil, err
	}
	if g.Over() {
		return nil, nil
	}

	rec.Notation = extendedNotation(&rec, primarySAN, forcedSAN, reactiveSAN)

	if rec.ReactiveMate {
		g.pos = pos
		g.ent = ent
		rec.Fingerprint = g.fingerprint()
		g.records = append(g.records, rec)
		g.finish(wonBy(rec.Mover, OutcomeReactiveMate))
		return &g.records[len(g.records)-1], nil
	}

	pos = pos.advance()
	g.pos = pos
	g.ent = ent
	rec.Fingerprint = g.fingerprint()
	rec.NextMoves = len(g.pos.LegalMoves(g.pos.Turn()))
	g.records = append(g.records, rec)
	g.seen[rec.Fingerprint]++

	g.phase = PhaseTurnComplete
	g.settle(rec.Fingerprint, rec.NextMoves)
	if !g.Over() {
		g.phase = PhaseAwaitPrimary
	}
	return &g.records[len(g.records)-1], nil
}

// settle checks the end-of-turn terminations for the side now to move.
func (g *Game) settle(fingerprint uint64, nextMoves int) {
	side := g.pos.Turn()
	if nextMoves == 0 {
		g.finish(g.noMoveResult(side))
		return
	}
	switch {
	case g.seen[fingerprint] >= 3:
		g.finish(drawnBy(OutcomeRepetition))
	case g.pos.HalfmoveClock() >= 100:
		g.finish(drawnBy(OutcomeHalfmoveLimit))
	case g.deadPosition():
		g.finish(drawnBy(OutcomeDeadPosition))
	}
}

func (g *Game) noMoveResult(stuck Color) Result {
	if g.pos.InCheck(stuck) {
		return wonBy(stuck.Opposite(), OutcomeCheckmate)
	}
	return drawnBy(OutcomeStalemate)
}

func (g *Game) finish(result Result) {
	g.result = result
	g.phase = PhaseGameOver
}

// deadPosition covers the insufficient-material draws: bare kings, or
// kings plus a single minor piece.
func (g *Game) deadPosition() bool {
	minors := 0
	for i := 0; i < pieceCount; i++ {
		pc := g.pos.PieceByID(PieceID(i))
		if !pc.Alive || pc.Type == King {
			continue
		}
		if pc.Type != Knight && pc.Type != Bishop {
			return false
		}
		minors++
		if minors > 1 {
			return false
		}
	}
	return true
}

// appendBreaks severs the links ended by an applied move: the victim's
// link on capture, the mover's link on promotion.
func appendBreaks(dst []LinkBreak, ent *EntanglementMap, m Move) []LinkBreak {
	if victim, ok := m.CapturedPiece(); ok {
		if cp, linked := ent.breakLink(victim); linked {
			dst = append(dst, LinkBreak{Member: victim, Counterpart: cp, Reason: BreakCapture})
		}
	}
	if m.Kind == MovePromotion {
		if cp, linked := ent.breakLink(m.Piece); linked {
			dst = append(dst, LinkBreak{Member: m.Piece, Counterpart: cp, Reason: BreakPromotion})
		}
	}
	return dst
}

func containsMove(moves []Move, m Move) bool {
	for _, cand := range moves {
		if cand == m {
			return true
		}
	}
	return false
}
