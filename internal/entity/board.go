package entity

import (
	"fmt"

	"github.com/threetgame/backend/internal/apperror"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	// ResultTie is returned by Evaluate when the board is full with no winner.
	ResultTie = "-"

	EmptyCell = ""

	BoardSize = 9
)

// WinCombos lists all 8 winning lines: 3 rows, 3 columns, 2 diagonals.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid in row-major order. The zero value is an empty board.
// Board has value semantics: Apply returns a new board and never mutates
// the receiver.
type Board [BoardSize]string

func NewBoard() Board {
	return Board{}
}

// Apply - places mark into cell and returns the resulting board.
func (that Board) Apply(cell int, mark string) (Board, error) {
	if cell < 0 || cell >= BoardSize {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that[cell] != EmptyCell {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that[cell] = mark

	return that, nil
}

// Evaluate - returns the winning mark, ResultTie when the board is full
// with no winner, or an empty string while the game is still in progress.
// Winning lines are checked before the tie so a line completed on the
// ninth move is always reported as a win.
func (that Board) Evaluate() string {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range that {
		if cell == EmptyCell {
			return ""
		}
	}

	return ResultTie
}

// OccupiedCells - counts non-empty cells.
func (that Board) OccupiedCells() int {
	count := 0
	for _, cell := range that {
		if cell != EmptyCell {
			count++
		}
	}

	return count
}

// ToggleMark - returns the opposing mark.
func ToggleMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
