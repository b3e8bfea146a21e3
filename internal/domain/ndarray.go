package domain

import (
	"encoding/json"
	"fmt"
)

// NDArray is an n-dimensional numeric array stored as a flat float64
// slice in row-major order. On the wire it is a nested JSON array.
type NDArray struct {
	Shape []int
	Data  []float64
}

// NDim reports the number of dimensions.
func (a *NDArray) NDim() int { return len(a.Shape) }

// Len reports the total number of elements.
func (a *NDArray) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Frames decomposes the array into 2-D frames: a 2-D array is one
// frame, a 3-D array yields one frame per leading index. Any other
// dimensionality reports false.
func (a *NDArray) Frames() ([]*NDArray, bool) {
	switch a.NDim() {
	case 2:
		return []*NDArray{a}, true
	case 3:
		n, h, w := a.Shape[0], a.Shape[1], a.Shape[2]
		frames := make([]*NDArray, n)
		for i := 0; i < n; i++ {
			frames[i] = &NDArray{
				Shape: []int{h, w},
				Data:  a.Data[i*h*w : (i+1)*h*w],
			}
		}
		return frames, true
	}
	return nil, false
}

// Filled returns an array of the given shape with every element set to v.
func Filled(v float64, shape ...int) *NDArray {
	a := &NDArray{Shape: append([]int(nil), shape...)}
	a.Data = make([]float64, a.Len())
	for i := range a.Data {
		a.Data[i] = v
	}
	return a
}

// FromNested builds an NDArray from decoded JSON (nested []any of
// numbers). The nesting must be rectangular.
func FromNested(v any) (*NDArray, error) {
	a := &NDArray{}
	if err := a.fill(v, 0); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *NDArray) fill(v any, depth int) error {
	switch x := v.(type) {
	case []any:
		if len(a.Shape) <= depth {
			a.Shape = append(a.Shape, len(x))
		} else if a.Shape[depth] != len(x) {
			return fmt.Errorf("ragged array: length %d at depth %d, expected %d", len(x), depth, a.Shape[depth])
		}
		for _, el := range x {
			if err := a.fill(el, depth+1); err != nil {
				return err
			}
		}
		return nil
	case float64:
		if depth != len(a.Shape) {
			return fmt.Errorf("ragged array: scalar at depth %d", depth)
		}
		a.Data = append(a.Data, x)
		return nil
	default:
		return fmt.Errorf("array element has unsupported type %T", v)
	}
}

func (a *NDArray) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := FromNested(v)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

func (a NDArray) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.nested(0, a.Data))
}

func (a NDArray) nested(depth int, data []float64) any {
	if depth == len(a.Shape) {
		if len(data) == 1 {
			return data[0]
		}
		return data
	}
	n := a.Shape[depth]
	stride := 1
	for _, d := range a.Shape[depth+1:] {
		stride *= d
	}
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = a.nested(depth+1, data[i*stride:(i+1)*stride])
	}
	return out
}
