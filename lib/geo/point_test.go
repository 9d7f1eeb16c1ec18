package geo

import (
	"math"
	"testing"
)

func TestPointDistanceTo(t *testing.T) {
	p1 := &Point{0, 0}
	p2 := &Point{30, 40}

	d := p1.DistanceTo(p2)

	if d != 50.0 {
		t.Fatalf("Expected 50.0 and got %v", d)
	}
}

func TestPointIsFinite(t *testing.T) {
	if !NewPoint(1, 2).IsFinite() {
		t.Fatal("Expected (1, 2) to be finite")
	}
	if NewPoint(math.NaN(), 2).IsFinite() {
		t.Fatal("Expected NaN point to not be finite")
	}
	if NewPoint(1, math.Inf(-1)).IsFinite() {
		t.Fatal("Expected infinite point to not be finite")
	}
}

func TestPointsEquals(t *testing.T) {
	a := Points{NewPoint(1, 2), NewPoint(3, 4)}
	b := a.Copy()
	if !a.Equals(b) {
		t.Fatalf("Expected copy %v to equal %v", b.ToString(), a.ToString())
	}
	b[1].X = 5
	if a.Equals(b) {
		t.Fatal("Expected modified copy to differ")
	}
	if a[1].X != 3 {
		t.Fatal("Expected Copy to be deep")
	}
}

func TestAtLeast(t *testing.T) {
	if AtLeast(0.5, 5) != 5 {
		t.Fatalf("Expected 5 and got %v", AtLeast(0.5, 5))
	}
	if AtLeast(-0.5, 5) != -5 {
		t.Fatalf("Expected -5 and got %v", AtLeast(-0.5, 5))
	}
	if AtLeast(0, 5) != 0 {
		t.Fatalf("Expected 0 and got %v", AtLeast(0, 5))
	}
	if AtLeast(7, 5) != 7 {
		t.Fatalf("Expected 7 and got %v", AtLeast(7, 5))
	}
}
