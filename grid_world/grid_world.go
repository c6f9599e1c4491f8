package grid_world

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Point is an x/y grid coordinate. The orientation is such that (0,0) is the first
// character of the first row of a grid's text form.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Cell is a single grid position: whether it may be entered, and the cost of entering it.
type Cell struct {
	Walkable bool
	Cost     int
}

// Grid text symbols. Digits 0-9 are walkable cells whose cost is the digit.
const (
	WALL     = '#'
	WALKABLE = '.'
)

var (
	// ErrBadDimensions is returned when a grid would have a non-positive width or height.
	ErrBadDimensions = errors.New("grid dimensions must be positive")
	// ErrMalformedGrid is returned when grid text is empty, ragged, or contains unknown symbols.
	ErrMalformedGrid = errors.New("malformed grid")
	// ErrNegativeCost is returned when a cell is given a cost below zero.
	ErrNegativeCost = errors.New("cell cost must be non-negative")
)

// CostGrid is a rectangular map of cells, indexed [x][y]. A CostGrid is not mutated
// while a search runs over it, hence any number of searches may read it concurrently.
type CostGrid struct {
	cells         [][]Cell
	width, height int
}

// New returns a width x height grid whose every cell is a copy of fill.
func New(width, height int, fill Cell) (*CostGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, width, height)
	}
	if fill.Cost < 0 {
		return nil, ErrNegativeCost
	}

	cells := make([][]Cell, width)
	for x := range cells {
		cells[x] = make([]Cell, height)
		for y := range cells[x] {
			cells[x][y] = fill
		}
	}
	return &CostGrid{cells: cells, width: width, height: height}, nil
}

// FromRows converts grid text, one string per row, into a CostGrid. Row 0 is y=0.
// Symbols: '#' is a wall, '.' is walkable with cost 1, and a digit is walkable with that cost.
func FromRows(rows []string) (*CostGrid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedGrid)
	}

	width, height := len(rows[0]), len(rows)
	grid, _ := New(width, height, Cell{Walkable: true, Cost: 1})
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has length %d, expected %d", ErrMalformedGrid, y, len(row), width)
		}
		for x, sym := range []byte(row) {
			switch {
			case sym == WALL:
				grid.cells[x][y] = Cell{Walkable: false}
			case sym == WALKABLE:
				grid.cells[x][y] = Cell{Walkable: true, Cost: 1}
			case sym >= '0' && sym <= '9':
				grid.cells[x][y] = Cell{Walkable: true, Cost: int(sym - '0')}
			default:
				return nil, fmt.Errorf("%w: unknown symbol %q at (%d,%d)", ErrMalformedGrid, sym, x, y)
			}
		}
	}
	return grid, nil
}

// Parse reads grid text from r, ignoring blank lines and surrounding whitespace.
func Parse(r io.Reader) (*CostGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}

	rows := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rows = append(rows, line)
		}
	}
	return FromRows(rows)
}

// Width is the number of columns.
func (g *CostGrid) Width() int { return g.width }

// Height is the number of rows.
func (g *CostGrid) Height() int { return g.height }

// InBounds reports whether (x,y) lies within [0,width) x [0,height).
func (g *CostGrid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the cell at p. Out of bounds access is a programming error and panics.
func (g *CostGrid) At(p Point) Cell {
	g.mustBeInBounds(p.X, p.Y)
	return g.cells[p.X][p.Y]
}

// IsWalkable reports whether the cell at (x,y) may be entered. Panics when out of bounds.
func (g *CostGrid) IsWalkable(x, y int) bool {
	g.mustBeInBounds(x, y)
	return g.cells[x][y].Walkable
}

// CostOf returns the cost of entering (x,y). Panics when out of bounds.
func (g *CostGrid) CostOf(x, y int) int {
	g.mustBeInBounds(x, y)
	return g.cells[x][y].Cost
}

// Set replaces the cell at (x,y). Grids must not be modified while a search is reading them.
func (g *CostGrid) Set(x, y int, cell Cell) error {
	g.mustBeInBounds(x, y)
	if cell.Cost < 0 {
		return ErrNegativeCost
	}
	g.cells[x][y] = cell
	return nil
}

// Clear forces the cell at p to be walkable, keeping its cost unless it is zero,
// in which case the cost becomes 1. The front-ends use this to carve out start and goal.
func (g *CostGrid) Clear(p Point) {
	g.mustBeInBounds(p.X, p.Y)
	cell := &g.cells[p.X][p.Y]
	cell.Walkable = true
	if cell.Cost == 0 {
		cell.Cost = 1
	}
}

func (g *CostGrid) mustBeInBounds(x, y int) {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid_world: (%d,%d) out of bounds for %dx%d grid", x, y, g.width, g.height))
	}
}

// Rows converts the grid back into its text form. Costs above 9 cannot be represented
// and are clamped to '9'; use FromRows(Rows()) only for grids built from text.
func (g *CostGrid) Rows() []string {
	rows := make([]string, g.height)
	for y := 0; y < g.height; y++ {
		var sb strings.Builder
		for x := 0; x < g.width; x++ {
			sb.WriteByte(Symbol(g.cells[x][y]))
		}
		rows[y] = sb.String()
	}
	return rows
}

// Symbol returns the text symbol for a cell.
func Symbol(cell Cell) byte {
	switch {
	case !cell.Walkable:
		return WALL
	case cell.Cost == 1:
		return WALKABLE
	case cell.Cost > 9:
		return '9'
	default:
		return byte('0' + cell.Cost)
	}
}

// Visit calls fn for every cell, column by column.
func (g *CostGrid) Visit(fn func(p Point, cell Cell)) {
	for x := range g.cells {
		for y := range g.cells[x] {
			fn(Point{X: x, Y: y}, g.cells[x][y])
		}
	}
}

// WalkablePoints returns every walkable coordinate, column by column.
func (g *CostGrid) WalkablePoints() (points []Point) {
	g.Visit(func(p Point, cell Cell) {
		if cell.Walkable {
			points = append(points, p)
		}
	})
	return
}

// ShowGrid prints the grid in its text form, for visual reference.
func ShowGrid(w io.Writer, g *CostGrid) {
	for _, row := range g.Rows() {
		for i := 0; i < len(row); i++ {
			fmt.Fprintf(w, "%c ", row[i])
		}
		fmt.Fprintln(w)
	}
}

// Manhattan is the 4-connected taxicab distance between a and b.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
