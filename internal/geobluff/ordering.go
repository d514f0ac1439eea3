package geobluff

import "github.com/park285/geobluff/internal/dataset"

// OrderTolerance absorbs floating point noise in the ordering check. Equal
// values always satisfy the order.
const OrderTolerance = 0.0001

// InOrder reports whether values are non-decreasing within OrderTolerance.
func InOrder(values []float64) bool {
	for i := 0; i+1 < len(values); i++ {
		if values[i] > values[i+1]+OrderTolerance {
			return false
		}
	}
	return true
}

// BoardInOrder applies InOrder to the board's values for category.
func BoardInOrder(board []dataset.Country, category string) bool {
	values := make([]float64, len(board))
	for i, c := range board {
		values[i] = c.Value(category)
	}
	return InOrder(values)
}
