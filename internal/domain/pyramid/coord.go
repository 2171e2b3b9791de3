package pyramid

import (
	"fmt"
	"strconv"
	"strings"

	errs "margo/internal/errors"
)

// MaxSize bounds the base side so every column fits a single letter.
const MaxSize = 26

// Coord addresses a cell in physical board units. A cell on layer L sits at
// X = 2*col + L, Y = 2*row + L, so balls on neighbouring layers are one unit
// apart diagonally and balls on the same layer are two units apart.
type Coord struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Layer int `json:"layer"`
}

// Cell builds a coordinate from layer-local column and row indices.
func Cell(col, row, layer int) Coord {
	return Coord{X: 2*col + layer, Y: 2*row + layer, Layer: layer}
}

// Local strips the layer offset and returns the layer-local indices.
func (c Coord) Local() (col, row int) {
	return (c.X - c.Layer) / 2, (c.Y - c.Layer) / 2
}

// String renders the human-readable identifier: column letter, 1-based row,
// and "^layer" above the base ("c3", "b2^1").
func (c Coord) String() string {
	col, row := c.Local()
	if col < 0 || col >= MaxSize || row < 0 {
		return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Layer)
	}
	name := string(rune('a'+col)) + strconv.Itoa(row+1)
	if c.Layer > 0 {
		name += "^" + strconv.Itoa(c.Layer)
	}
	return name
}

// Less orders coordinates bottom layer first, then row-major.
func (c Coord) Less(o Coord) bool {
	if c.Layer != o.Layer {
		return c.Layer < o.Layer
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// ParseCoord is the inverse of Coord.String. It checks syntax only; use
// Geometry.Parse to also check bounds.
func ParseCoord(s string) (Coord, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 || s[0] < 'a' || s[0] > 'z' {
		return Coord{}, fmt.Errorf("%w: %q", errs.ErrInvalidCoordinate, s)
	}
	col := int(s[0] - 'a')
	rest, layerPart, hasLayer := strings.Cut(s[1:], "^")

	row, err := strconv.Atoi(rest)
	if err != nil || row < 1 {
		return Coord{}, fmt.Errorf("%w: %q", errs.ErrInvalidCoordinate, s)
	}
	layer := 0
	if hasLayer {
		layer, err = strconv.Atoi(layerPart)
		if err != nil || layer < 1 {
			return Coord{}, fmt.Errorf("%w: %q", errs.ErrInvalidCoordinate, s)
		}
	}
	return Cell(col, row-1, layer), nil
}

var (
	diagonals   = [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	orthogonals = [4][2]int{{-2, 0}, {2, 0}, {0, -2}, {0, 2}}
)

// Geometry describes a square pyramid with Size balls along the base edge.
type Geometry struct {
	Size int
}

func NewGeometry(size int) (Geometry, error) {
	if size < 1 || size > MaxSize {
		return Geometry{}, fmt.Errorf("%w: %d", errs.ErrInvalidBoardSize, size)
	}
	return Geometry{Size: size}, nil
}

// Width is the number of cells along one edge of the given layer.
func (g Geometry) Width(layer int) int {
	return g.Size - layer
}

// Span is the number of physical units along the base edge.
func (g Geometry) Span() int {
	return 2*g.Size - 1
}

// Contains reports whether c names an existing cell: the layer is within the
// pyramid, both axes share the layer's parity and lie inside its shrinking
// bounds.
func (g Geometry) Contains(c Coord) bool {
	if c.Layer < 0 || c.Layer >= g.Size {
		return false
	}
	if (c.X-c.Layer)%2 != 0 || (c.Y-c.Layer)%2 != 0 {
		return false
	}
	hi := 2*g.Size - 2 - c.Layer
	return c.X >= c.Layer && c.X <= hi && c.Y >= c.Layer && c.Y <= hi
}

func (g Geometry) Validate(c Coord) error {
	if !g.Contains(c) {
		return fmt.Errorf("%w: (%d,%d,%d) on size %d", errs.ErrInvalidCoordinate, c.X, c.Y, c.Layer, g.Size)
	}
	return nil
}

// Parse reads an identifier and checks it against the pyramid bounds.
func (g Geometry) Parse(s string) (Coord, error) {
	c, err := ParseCoord(s)
	if err != nil {
		return Coord{}, err
	}
	if err := g.Validate(c); err != nil {
		return Coord{}, err
	}
	return c, nil
}

// Supports returns the four cells one layer down that c rests on. Callers
// must not pass a base cell.
func (g Geometry) Supports(c Coord) [4]Coord {
	var out [4]Coord
	for i, d := range diagonals {
		out[i] = Coord{X: c.X + d[0], Y: c.Y + d[1], Layer: c.Layer - 1}
	}
	return out
}

// Above returns the existing cells one layer up that rest partly on c.
func (g Geometry) Above(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range diagonals {
		n := Coord{X: c.X + d[0], Y: c.Y + d[1], Layer: c.Layer + 1}
		if g.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// Below returns the supports of c, or nothing for a base cell.
func (g Geometry) Below(c Coord) []Coord {
	if c.Layer == 0 {
		return nil
	}
	s := g.Supports(c)
	return s[:]
}

// Orthogonal returns the existing same-layer cells two units away.
func (g Geometry) Orthogonal(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range orthogonals {
		n := Coord{X: c.X + d[0], Y: c.Y + d[1], Layer: c.Layer}
		if g.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// AllCoords lists every cell of the pyramid, base first.
func (g Geometry) AllCoords() []Coord {
	var out []Coord
	for layer := 0; layer < g.Size; layer++ {
		w := g.Width(layer)
		for row := 0; row < w; row++ {
			for col := 0; col < w; col++ {
				out = append(out, Cell(col, row, layer))
			}
		}
	}
	return out
}
