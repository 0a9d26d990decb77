package board

import (
	"strings"
)

// ToSAN converts a move to Standard Algebraic Notation, used by the
// engine's debug board-display command rather than by the UCI wire
// protocol itself (which moves exclusively in long algebraic form).
func (m Move) ToSAN(b *Board) string {
	if m == NoMove {
		return "-"
	}

	from := m.From()
	to := m.To()
	piece := b.PieceAt(from)

	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder

	if m.IsCastle() {
		if m.IsShortCastle() {
			return "O-O"
		}
		return "O-O-O"
	}

	pt := piece.Type()

	if pt != Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(getDisambiguation(b, m, pt))
	}

	if m.IsCapture() {
		if pt == Pawn {
			sb.WriteByte('a' + byte(from.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte("PNBRQK"[m.PromotionPieceType()])
	}

	nb := b.Clone()
	nb.MakeMove(m)
	if nb.IsCheckmate() {
		sb.WriteByte('#')
	} else if nb.InCheck() {
		sb.WriteByte('+')
	}

	return sb.String()
}

// getDisambiguation returns the disambiguation string needed for a move.
func getDisambiguation(b *Board, m Move, pt PieceType) string {
	from := m.From()
	to := m.To()
	us := b.SideToMove
	pieces := b.Pieces[us][pt]

	var candidates []Square
	allMoves := b.GenerateLegalMoves()
	for i := 0; i < allMoves.Len(); i++ {
		move := allMoves.Get(i)
		if move.To() != to {
			continue
		}
		moveFrom := move.From()
		if moveFrom == from {
			continue
		}
		if pieces.IsSet(moveFrom) {
			candidates = append(candidates, moveFrom)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.File() == from.File() {
			sameFile = true
		}
		if sq.Rank() == from.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + byte(from.File())))
	}
	if !sameRank {
		return string(rune('1' + byte(from.Rank())))
	}
	return from.String()
}

// ParseSAN parses a SAN string against a board and returns the
// corresponding legal move, or NoMove if none matches. Castling strings
// ("O-O", "O-O-O") are turned into the side to move's castling move
// without a legality check.
func ParseSAN(s string, b *Board) (Move, error) {
	s = strings.TrimSpace(s)

	if s == "O-O" || s == "0-0" {
		if b.SideToMove == White {
			return NewCastling(E1, G1, true), nil
		}
		return NewCastling(E8, G8, true), nil
	}
	if s == "O-O-O" || s == "0-0-0" {
		if b.SideToMove == White {
			return NewCastling(E1, C1, false), nil
		}
		return NewCastling(E8, C8, false), nil
	}

	s = strings.TrimSuffix(s, "+")
	s = strings.TrimSuffix(s, "#")

	promoPiece := NoPieceType
	if idx := strings.Index(s, "="); idx >= 0 {
		switch s[idx+1] {
		case 'N':
			promoPiece = Knight
		case 'B':
			promoPiece = Bishop
		case 'R':
			promoPiece = Rook
		case 'Q':
			promoPiece = Queen
		}
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.Replace(s, "x", "", -1)

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		switch s[0] {
		case 'N':
			pt = Knight
		case 'B':
			pt = Bishop
		case 'R':
			pt = Rook
		case 'Q':
			pt = Queen
		case 'K':
			pt = King
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, nil
	}
	destStr := s[len(s)-2:]
	dest, err := ParseSquare(destStr)
	if err != nil {
		return NoMove, err
	}
	s = s[:len(s)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range s {
		if c >= 'a' && c <= 'h' {
			disambigFile = int(c - 'a')
		} else if c >= '1' && c <= '8' {
			disambigRank = int(c - '1')
		}
	}

	moves := b.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.To() != dest {
			continue
		}

		from := m.From()
		piece := b.PieceAt(from)
		if piece.Type() != pt {
			continue
		}
		if disambigFile >= 0 && from.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && from.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture() {
			continue
		}
		if promoPiece != NoPieceType {
			if !m.IsPromotion() || m.PromotionPieceType() != promoPiece {
				continue
			}
		}

		return m, nil
	}

	return NoMove, nil
}

// MovesToSAN converts a sequence of moves played from b into their SAN
// strings, advancing a scratch copy of the board one move at a time.
func MovesToSAN(b *Board, moves []Move) []string {
	result := make([]string, len(moves))
	scratch := b.Clone()

	for i, m := range moves {
		result[i] = m.ToSAN(scratch)
		scratch.MakeMove(m)
	}

	return result
}
