package games

import (
	"errors"
	"strconv"
	"strings"
)

const (
	maxDice  = 25
	maxSides = 100
)

var (
	ErrDiceFormat  = errors.New("dice must look like NdN")
	ErrTooManyDice = errors.New("too many dice or sides")
)

// ParseDice reads "NdN" notation, e.g. "2d6"
func ParseDice(spec string) (count, sides int, err error) {
	left, right, ok := strings.Cut(strings.ToLower(strings.TrimSpace(spec)), "d")
	if !ok {
		return 0, 0, ErrDiceFormat
	}
	count, err = strconv.Atoi(left)
	if err != nil || count < 1 {
		return 0, 0, ErrDiceFormat
	}
	sides, err = strconv.Atoi(right)
	if err != nil || sides < 1 {
		return 0, 0, ErrDiceFormat
	}
	if count > maxDice || sides > maxSides {
		return 0, 0, ErrTooManyDice
	}
	return count, sides, nil
}

// RPSOutcome compares two rock-paper-scissors choices from the first player's side
func RPSOutcome(player, opponent string) int {
	if player == opponent {
		return 0
	}
	beats := map[string]string{"rock": "scissors", "paper": "rock", "scissors": "paper"}
	if beats[player] == opponent {
		return 1
	}
	return -1
}
