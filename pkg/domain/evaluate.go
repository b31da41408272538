package domain

import (
	"fmt"
	"sort"
)

// Evaluate computes the value of a node of type t from its input values.
// reading is the last hardware reading and is only used by Temp and Fan.
//
// An absent input yields an absent value for every computed variant except Flat.
func Evaluate(t NodeType, inputs []Value, reading Value) Value {
	switch t := t.(type) {
	case *Temp, *Fan:
		return reading
	case *Control:
		if !t.DrivesHardware() {
			return None
		}
		return first(inputs)
	case *Flat:
		return Some(t.Value)
	case *Linear:
		in, ok := first(inputs).Get()
		if !ok {
			return None
		}
		return Some(t.Speed(in))
	case *Target:
		in, ok := first(inputs).Get()
		if !ok {
			return None
		}
		return Some(t.Speed(in))
	case *Graph:
		in, ok := first(inputs).Get()
		if !ok || len(t.Coords) == 0 {
			return None
		}
		return Some(t.Percent(in))
	case *CustomTemp:
		return t.Reduce(inputs)
	}
	panic(fmt.Sprintf("domain: unknown node type %T", t))
}

func first(inputs []Value) Value {
	if len(inputs) == 0 {
		return None
	}
	return inputs[0]
}

// interpolate returns the y of x on the line through (x0, y0) and (x1, y1).
func interpolate(x0, y0, x1, y1, x float64) float64 {
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}

// Speed returns the speed for temperature temp, clamped to the configured bounds.
func (l *Linear) Speed(temp float64) float64 {
	switch {
	case temp <= l.MinTemp:
		return l.MinSpeed
	case temp >= l.MaxTemp:
		return l.MaxSpeed
	}
	return interpolate(l.MinTemp, l.MinSpeed, l.MaxTemp, l.MaxSpeed, temp)
}

// Speed returns the speed for temperature temp, clamped to the idle and load points.
func (t *Target) Speed(temp float64) float64 {
	switch {
	case temp <= t.IdleTemp:
		return t.IdleSpeed
	case temp >= t.LoadTemp:
		return t.LoadSpeed
	}
	return interpolate(t.IdleTemp, t.IdleSpeed, t.LoadTemp, t.LoadSpeed, temp)
}

// Percent returns the percent for temperature temp.
// Outside the curve it clamps to the first or last coordinate; Coords must not be empty.
func (g *Graph) Percent(temp float64) float64 {
	i := sort.Search(len(g.Coords), func(i int) bool { return g.Coords[i].Temp >= temp })
	switch {
	case i == len(g.Coords):
		return g.Coords[i-1].Percent
	case g.Coords[i].Temp == temp, i == 0:
		return g.Coords[i].Percent
	}
	lo, hi := g.Coords[i-1], g.Coords[i]
	return interpolate(lo.Temp, lo.Percent, hi.Temp, hi.Percent, temp)
}

// Reduce folds the present inputs with the configured reducer.
// No present input yields an absent value.
func (c *CustomTemp) Reduce(inputs []Value) Value {
	var (
		acc   float64
		count int
	)
	for _, in := range inputs {
		v, ok := in.Get()
		if !ok {
			continue
		}
		switch {
		case count == 0:
			acc = v
		case c.Reducer == CustomTempMin:
			acc = min(acc, v)
		case c.Reducer == CustomTempMax:
			acc = max(acc, v)
		default:
			acc += v
		}
		count++
	}
	if count == 0 {
		return None
	}
	if c.Reducer == CustomTempAverage {
		acc /= float64(count)
	}
	return Some(acc)
}
