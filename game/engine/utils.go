package engine

// Sequence is an ordered list of symbols. Secrets and valid guesses never
// repeat a symbol.
type Sequence []rune

// ParseSequence splits guess text into its symbols
func ParseSequence(s string) Sequence {
	return Sequence([]rune(s))
}

// String joins the symbols back into text
func (s Sequence) String() string {
	return string(s)
}

// Unique reports whether every symbol in s appears exactly once
func (s Sequence) Unique() bool {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		if _, dup := seen[r]; dup {
			return false
		}
		seen[r] = struct{}{}
	}
	return true
}

// Clone returns an independent copy of s
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Score compares guess against secret. Both are assumed to hold unique
// symbols, so a symbol is never counted twice.
func Score(secret, guess Sequence) (bulls, cows int) {
	for i, symbol := range guess {
		pos := indexOf(secret, symbol)
		switch {
		case pos < 0:
		case pos == i:
			bulls++
		default:
			cows++
		}
	}
	return bulls, cows
}

func indexOf(s Sequence, symbol rune) int {
	for i, r := range s {
		if r == symbol {
			return i
		}
	}
	return -1
}
