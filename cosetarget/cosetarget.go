// Package cosetarget holds the serializable form of a laid out compound graph.
package cosetarget

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"

	"oss.terrastruct.com/cose/lib/geo"
	"oss.terrastruct.com/cose/lib/go2"
)

type Diagram struct {
	Name string `json:"name"`

	Shapes      []Shape      `json:"shapes"`
	Connections []Connection `json:"connections"`
}

func NewDiagram() *Diagram {
	return &Diagram{
		Shapes:      []Shape{},
		Connections: []Connection{},
	}
}

func (diagram Diagram) Bytes() ([]byte, error) {
	b1, err := json.Marshal(diagram.Shapes)
	if err != nil {
		return nil, err
	}
	b2, err := json.Marshal(diagram.Connections)
	if err != nil {
		return nil, err
	}
	return append(b1, b2...), nil
}

// HashID identifies the geometry of the diagram.
func (diagram Diagram) HashID() (string, error) {
	bytes, err := diagram.Bytes()
	if err != nil {
		return "", err
	}
	h := fnv.New32a()
	h.Write(bytes)
	return fmt.Sprintf("cose-%d", h.Sum32()), nil
}

func (diagram Diagram) BoundingBox() (topLeft, bottomRight Point) {
	if len(diagram.Shapes) == 0 {
		return Point{0, 0}, Point{0, 0}
	}
	x1 := int(math.MaxInt32)
	y1 := int(math.MaxInt32)
	x2 := int(math.MinInt32)
	y2 := int(math.MinInt32)

	for _, targetShape := range diagram.Shapes {
		x1 = go2.Min(x1, targetShape.Pos.X)
		y1 = go2.Min(y1, targetShape.Pos.Y)
		x2 = go2.Max(x2, targetShape.Pos.X+targetShape.Width)
		y2 = go2.Max(y2, targetShape.Pos.Y+targetShape.Height)
	}

	for _, connection := range diagram.Connections {
		for _, point := range connection.Route {
			x1 = go2.Min(x1, int(math.Floor(point.X)))
			y1 = go2.Min(y1, int(math.Floor(point.Y)))
			x2 = go2.Max(x2, int(math.Ceil(point.X)))
			y2 = go2.Max(y2, int(math.Ceil(point.Y)))
		}
	}

	return Point{x1, y1}, Point{x2, y2}
}

type Shape struct {
	ID string `json:"id"`
	// Parent is the ID of the compound shape this one is nested in, empty at the top level.
	Parent string `json:"parent,omitempty"`
	Level  int    `json:"level"`

	Compound bool `json:"compound"`

	Pos    Point `json:"pos"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
}

type Connection struct {
	ID string `json:"id"`

	Src string `json:"src"`
	Dst string `json:"dst"`

	// InterGraph is set when Src and Dst are on different nesting levels.
	InterGraph  bool    `json:"interGraph"`
	IdealLength float64 `json:"idealLength"`

	// Route runs from the center of Src through the bend points to the center of Dst.
	Route []*geo.Point `json:"route"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}
