package roulette

import "math/rand"

// WheelSize is the number of pockets on a European wheel (0-36).
const WheelSize = 37

type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

// redNumbers is the fixed red partition of the European wheel.
// Every other number in 1-36 is black; 0 is green.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// NumberColor returns the color of a wheel number.
func NumberColor(n int) Color {
	if n == 0 {
		return ColorGreen
	}
	if redNumbers[n] {
		return ColorRed
	}
	return ColorBlack
}

// columnOf returns the table column (1-3) a number belongs to, 0 for zero.
// Column 1 is 1,4,...,34; column 2 is 2,5,...,35; column 3 is 3,6,...,36.
func columnOf(n int) int {
	if n == 0 {
		return 0
	}
	c := n % 3
	if c == 0 {
		return 3
	}
	return c
}

// dozenOf returns the dozen (1-3) a number belongs to, 0 for zero.
func dozenOf(n int) int {
	if n == 0 {
		return 0
	}
	return (n-1)/12 + 1
}

// RandSource draws a uniform integer in [0, n). It exists so tests can
// force a specific outcome; production sessions use math/rand.
type RandSource func(n int) int

func defaultRandSource() RandSource {
	return rand.Intn
}
