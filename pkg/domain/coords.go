package domain

import (
	"slices"
)

func (g *Graph) search(temp float64) (int, bool) {
	return slices.BinarySearchFunc(g.Coords, temp, func(c Coord, t float64) int {
		switch {
		case c.Temp < t:
			return -1
		case c.Temp > t:
			return 1
		}
		return 0
	})
}

// AddCoord inserts c keeping the curve sorted.
// A coordinate at an existing temperature is rejected.
func (g *Graph) AddCoord(c Coord) error {
	if err := checkPercents("percent", c.Percent); err != nil {
		return err
	}
	i, found := g.search(c.Temp)
	if found {
		return &ValidationError{Key: "temp", Reason: "a coordinate already exists at this temperature", Value: c.Temp}
	}
	g.Coords = slices.Insert(g.Coords, i, c)
	return nil
}

// RemoveCoord deletes the coordinate equal to c.
func (g *Graph) RemoveCoord(c Coord) error {
	i, found := g.search(c.Temp)
	if !found || g.Coords[i] != c {
		return &ValidationError{Key: "coord", Reason: "no such coordinate", Value: c}
	}
	g.Coords = slices.Delete(g.Coords, i, i+1)
	return nil
}

// ReplaceCoord swaps previous for next.
// next may keep the temperature of previous but not take the temperature of another coordinate.
func (g *Graph) ReplaceCoord(previous, next Coord) error {
	if err := checkPercents("percent", next.Percent); err != nil {
		return err
	}
	i, found := g.search(previous.Temp)
	if !found || g.Coords[i] != previous {
		return &ValidationError{Key: "coord", Reason: "no such coordinate", Value: previous}
	}
	if next.Temp != previous.Temp {
		if _, dup := g.search(next.Temp); dup {
			return &ValidationError{Key: "temp", Reason: "a coordinate already exists at this temperature", Value: next.Temp}
		}
	}
	g.Coords = slices.Delete(g.Coords, i, i+1)
	j, _ := g.search(next.Temp)
	g.Coords = slices.Insert(g.Coords, j, next)
	return nil
}
