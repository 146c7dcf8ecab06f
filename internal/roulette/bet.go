package roulette

import (
	"fmt"
	"strconv"
	"strings"
)

type BetType string

const (
	BetStraight BetType = "straight"
	BetSplit    BetType = "split"
	BetStreet   BetType = "street"
	BetCorner   BetType = "corner"
	BetLine     BetType = "line"
	BetDozen    BetType = "dozen"
	BetColumn   BetType = "column"
	BetRed      BetType = "red"
	BetBlack    BetType = "black"
	BetEven     BetType = "even"
	BetOdd      BetType = "odd"
	BetLow      BetType = "low"
	BetHigh     BetType = "high"
)

// betMultipliers is the authoritative odds table. Winnings are
// amount * multiplier; the returned stake is accounted separately.
var betMultipliers = map[BetType]int64{
	BetStraight: 35,
	BetSplit:    17,
	BetStreet:   11,
	BetCorner:   8,
	BetLine:     5,
	BetDozen:    2,
	BetColumn:   2,
	BetRed:      1,
	BetBlack:    1,
	BetEven:     1,
	BetOdd:      1,
	BetLow:      1,
	BetHigh:     1,
}

// Multiplier returns the payout multiplier for a bet type, 0 if unknown.
func Multiplier(t BetType) int64 {
	return betMultipliers[t]
}

// Bet is one ledger entry of a betting round, identified by (Type, Value).
type Bet struct {
	Type       BetType `json:"type"`
	Value      string  `json:"value"`
	Amount     int64   `json:"amount"`
	Multiplier int64   `json:"multiplier"`
}

// Key identifies a bet within a round. Re-placing the same (type, value)
// accumulates into the existing entry.
func (b *Bet) Key() string {
	if b.Value == "" {
		return string(b.Type)
	}
	return string(b.Type) + ":" + b.Value
}

// ValidSelector reports whether (type, value) is a recognized combination,
// returning the canonical selector. Callers that escrow funds before
// recording a bet use it to reject bad selectors up front.
func ValidSelector(t BetType, value string) (string, error) {
	return normalizeSelector(t, value)
}

// normalizeSelector validates a selector against its bet type and returns
// the canonical form used for bet keys. Even-money bets carry no selector.
func normalizeSelector(t BetType, value string) (string, error) {
	value = strings.TrimSpace(value)

	switch t {
	case BetStraight:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 36 {
			return "", fmt.Errorf("straight bet needs a number 0-36, got %q", value)
		}
		return strconv.Itoa(n), nil

	case BetSplit:
		a, b, err := parseSplit(value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d-%d", a, b), nil

	case BetStreet:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 34 || n%3 != 1 {
			return "", fmt.Errorf("street bet needs a row start (1,4,...,34), got %q", value)
		}
		return strconv.Itoa(n), nil

	case BetCorner:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 32 || n%3 == 0 {
			return "", fmt.Errorf("corner bet needs a block anchor, got %q", value)
		}
		return strconv.Itoa(n), nil

	case BetLine:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 31 || n%3 != 1 {
			return "", fmt.Errorf("line bet needs a double-row start (1,4,...,31), got %q", value)
		}
		return strconv.Itoa(n), nil

	case BetDozen, BetColumn:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 3 {
			return "", fmt.Errorf("%s bet needs an index 1-3, got %q", t, value)
		}
		return strconv.Itoa(n), nil

	case BetRed, BetBlack, BetEven, BetOdd, BetLow, BetHigh:
		if value != "" && value != string(t) {
			return "", fmt.Errorf("%s bet takes no selector, got %q", t, value)
		}
		return "", nil
	}

	return "", fmt.Errorf("unknown bet type %q", t)
}

// parseSplit parses "a-b" and checks the two numbers are adjacent on the
// table layout: horizontal neighbors in a row, vertical neighbors between
// rows, or one of the zero splits 0-1, 0-2, 0-3.
func parseSplit(value string) (int, int, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("split bet needs two numbers like 8-9, got %q", value)
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("split bet needs two numbers like 8-9, got %q", value)
	}
	if a > b {
		a, b = b, a
	}
	if a < 0 || b > 36 {
		return 0, 0, fmt.Errorf("split numbers out of range in %q", value)
	}
	if a == 0 {
		if b >= 1 && b <= 3 {
			return a, b, nil
		}
		return 0, 0, fmt.Errorf("zero splits only with 1, 2 or 3, got %q", value)
	}
	// Horizontal neighbor: same row, so the left number must not end a row.
	if b == a+1 && a%3 != 0 {
		return a, b, nil
	}
	// Vertical neighbor: one row apart.
	if b == a+3 {
		return a, b, nil
	}
	return 0, 0, fmt.Errorf("split numbers %d and %d are not adjacent", a, b)
}

// Wins reports whether the bet wins for the given outcome. It is pure and
// total: malformed or unknown bets simply lose, they never error.
func (b *Bet) Wins(outcome int) bool {
	if outcome < 0 || outcome >= WheelSize {
		return false
	}

	switch b.Type {
	case BetStraight:
		n, err := strconv.Atoi(b.Value)
		return err == nil && n == outcome

	case BetSplit:
		a, c, err := parseSplit(b.Value)
		return err == nil && (outcome == a || outcome == c)

	case BetStreet:
		n, err := strconv.Atoi(b.Value)
		return err == nil && outcome >= n && outcome < n+3 && n%3 == 1

	case BetCorner:
		n, err := strconv.Atoi(b.Value)
		if err != nil || n < 1 || n > 32 || n%3 == 0 {
			return false
		}
		return outcome == n || outcome == n+1 || outcome == n+3 || outcome == n+4

	case BetLine:
		n, err := strconv.Atoi(b.Value)
		return err == nil && n%3 == 1 && n <= 31 && outcome >= n && outcome < n+6

	case BetDozen:
		n, err := strconv.Atoi(b.Value)
		return err == nil && outcome != 0 && dozenOf(outcome) == n

	case BetColumn:
		n, err := strconv.Atoi(b.Value)
		return err == nil && outcome != 0 && columnOf(outcome) == n

	case BetRed:
		return NumberColor(outcome) == ColorRed

	case BetBlack:
		return NumberColor(outcome) == ColorBlack

	case BetEven:
		return outcome != 0 && outcome%2 == 0

	case BetOdd:
		return outcome%2 == 1

	case BetLow:
		return outcome >= 1 && outcome <= 18

	case BetHigh:
		return outcome >= 19 && outcome <= 36
	}

	return false
}
