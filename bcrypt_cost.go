//go:build !race

package fideauth

func passwordHashCost() int {
	return 14
}
