//go:build !race

package booktracker

func passwordHashCost() int {
	return 10
}
