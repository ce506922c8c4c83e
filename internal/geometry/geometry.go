package geometry

import "fmt"

// Offset is a signed displacement between two points on screen.
type Offset struct {
	X, Y int
}

// NewOffset creates a new offset
func NewOffset(x, y int) Offset {
	return Offset{X: x, Y: y}
}

func (o Offset) String() string {
	return fmt.Sprintf("Offset(%d, %d)", o.X, o.Y)
}

// Point is a position on screen. (0, 0) is the top left corner.
type Point struct {
	X, Y int
}

// NewPoint creates a new point. Coordinates must be non-negative.
func NewPoint(x, y int) (Point, error) {
	if x < 0 || y < 0 {
		return Point{}, fmt.Errorf("point coordinates must be non-negative, got (%d, %d)", x, y)
	}
	return Point{X: x, Y: y}, nil
}

// Add shifts the point by an offset.
func (p Point) Add(o Offset) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("Point(%d, %d)", p.X, p.Y)
}

// Frame is a rectangle on screen defined by its top left corner, width and height.
type Frame struct {
	Corner Point
	Width  int
	Height int
}

// NewFrame creates a new frame
func NewFrame(corner Point, width, height int) Frame {
	return Frame{Corner: corner, Width: width, Height: height}
}

// TopLeft returns the top left corner of the frame.
func (f Frame) TopLeft() Point {
	return f.Corner
}

// Center returns the center of the frame.
func (f Frame) Center() Point {
	return f.Corner.Add(Offset{X: f.Width / 2, Y: f.Height / 2})
}

// BottomRight returns the bottom right corner of the frame.
func (f Frame) BottomRight() Point {
	return f.Corner.Add(Offset{X: f.Width, Y: f.Height})
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame(%s, %d, %d)", f.Corner, f.Width, f.Height)
}

// RelativeFrame is a rectangle positioned by an offset from a reference
// point supplied later, typically the location of a matched template.
type RelativeFrame struct {
	Offset Offset
	Width  int
	Height int
}

// NewRelativeFrame creates a new relative frame
func NewRelativeFrame(offset Offset, width, height int) RelativeFrame {
	return RelativeFrame{Offset: offset, Width: width, Height: height}
}

// ToFrame anchors the relative frame at the given reference point.
func (rf RelativeFrame) ToFrame(reference Point) Frame {
	return Frame{Corner: reference.Add(rf.Offset), Width: rf.Width, Height: rf.Height}
}

func (rf RelativeFrame) String() string {
	return fmt.Sprintf("RelativeFrame(%s, %d, %d)", rf.Offset, rf.Width, rf.Height)
}
