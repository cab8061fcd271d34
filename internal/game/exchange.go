package game

// Exchange computes the damage each side takes when move a meets move b.
//
// An unmatched reversal sends the opponent's move back onto the opponent and
// shields the reverser. When neither or both sides reverse, each side takes the
// other's base damage.
func Exchange(a, b Move) (toA, toB int) {
	aRev := a == MoveReversal
	bRev := b == MoveReversal
	switch {
	case aRev && !bRev:
		return 0, b.Damage()
	case bRev && !aRev:
		return a.Damage(), 0
	default:
		return b.Damage(), a.Damage()
	}
}

// Reversed reports whether side a landed an unmatched reversal against b.
func Reversed(a, b Move) bool {
	return a == MoveReversal && b != MoveReversal
}
