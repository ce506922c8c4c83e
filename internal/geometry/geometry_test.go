package geometry

import "testing"

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name    string
		x, y    int
		wantErr bool
	}{
		{name: "Origin", x: 0, y: 0, wantErr: false},
		{name: "Positive coordinates", x: 120, y: 48, wantErr: false},
		{name: "Negative X", x: -1, y: 10, wantErr: true},
		{name: "Negative Y", x: 10, y: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPoint(tt.x, tt.y)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPoint(%d, %d) error = %v, wantErr %v", tt.x, tt.y, err, tt.wantErr)
			}
			if err == nil && (p.X != tt.x || p.Y != tt.y) {
				t.Errorf("NewPoint(%d, %d) = %s", tt.x, tt.y, p)
			}
		})
	}
}

func TestPointAdd(t *testing.T) {
	p := Point{X: 100, Y: 50}
	got := p.Add(Offset{X: -30, Y: 20})
	want := Point{X: 70, Y: 70}
	if got != want {
		t.Errorf("Add = %s, want %s", got, want)
	}
}

func TestPointEquality(t *testing.T) {
	a := Point{X: 5, Y: 9}
	b := Point{X: 5, Y: 9}
	if a != b {
		t.Errorf("expected %s == %s", a, b)
	}
	if (Point{X: 5, Y: 8}) == a {
		t.Errorf("expected differing points to compare unequal")
	}
}

func TestFrameDerivedPoints(t *testing.T) {
	f := NewFrame(Point{X: 10, Y: 20}, 100, 60)

	if got := f.TopLeft(); got != (Point{X: 10, Y: 20}) {
		t.Errorf("TopLeft = %s", got)
	}
	if got := f.Center(); got != (Point{X: 60, Y: 50}) {
		t.Errorf("Center = %s", got)
	}
	if got := f.BottomRight(); got != (Point{X: 110, Y: 80}) {
		t.Errorf("BottomRight = %s", got)
	}
}

func TestFrameCenterOddDimensions(t *testing.T) {
	// Integer center floors on odd dimensions.
	f := NewFrame(Point{X: 0, Y: 0}, 5, 7)
	if got := f.Center(); got != (Point{X: 2, Y: 3}) {
		t.Errorf("Center = %s, want Point(2, 3)", got)
	}
}

func TestRelativeFrameToFrame(t *testing.T) {
	rf := NewRelativeFrame(Offset{X: -10, Y: 5}, 40, 30)
	f := rf.ToFrame(Point{X: 100, Y: 100})

	want := Frame{Corner: Point{X: 90, Y: 105}, Width: 40, Height: 30}
	if f != want {
		t.Errorf("ToFrame = %s, want %s", f, want)
	}
}
