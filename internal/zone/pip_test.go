package zone

import (
    "math"
    "testing"

    "github.com/stretchr/testify/assert"
)

// 经纬度单位正方形 [0,2]x[0,2]，不含闭合点
var square = Ring{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 2}, {Lat: 2, Lng: 2}, {Lat: 2, Lng: 0}}

func TestContains(t *testing.T) {
    cases := []struct {
        name string
        pt   Point
        want bool
    }{
        {"interior", Point{Lat: 1, Lng: 1}, true},
        {"outside", Point{Lat: 3, Lng: 1}, false},
        {"outside left", Point{Lat: 1, Lng: -0.5}, false},
        {"bottom edge", Point{Lat: 0, Lng: 1}, true},
        {"right edge", Point{Lat: 1, Lng: 2}, true},
        {"top edge", Point{Lat: 2, Lng: 0.3}, true},
        {"vertex", Point{Lat: 0, Lng: 0}, true},
        {"opposite vertex", Point{Lat: 2, Lng: 2}, true},
        {"just outside edge", Point{Lat: 1, Lng: 2.000001}, false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, Contains(tc.pt, square))
        })
    }
}

func TestContainsClosingVertexOptional(t *testing.T) {
    closed := append(Ring{}, square...)
    closed = append(closed, square[0])
    for _, pt := range []Point{{Lat: 1, Lng: 1}, {Lat: 0, Lng: 1}, {Lat: 3, Lng: 3}} {
        assert.Equal(t, Contains(pt, square), Contains(pt, closed), "%v", pt)
    }
}

func TestContainsConcave(t *testing.T) {
    // U 形：中间凹口 lng 1..2, lat 1..3 不属于区域
    u := Ring{
        {Lat: 0, Lng: 0}, {Lat: 0, Lng: 3}, {Lat: 3, Lng: 3}, {Lat: 3, Lng: 2},
        {Lat: 1, Lng: 2}, {Lat: 1, Lng: 1}, {Lat: 3, Lng: 1}, {Lat: 3, Lng: 0},
    }
    assert.True(t, Contains(Point{Lat: 2, Lng: 0.5}, u))
    assert.True(t, Contains(Point{Lat: 2, Lng: 2.5}, u))
    assert.True(t, Contains(Point{Lat: 0.5, Lng: 1.5}, u))
    assert.False(t, Contains(Point{Lat: 2, Lng: 1.5}, u))
    assert.True(t, Contains(Point{Lat: 1, Lng: 1.5}, u), "notch floor is an edge")
}

func TestContainsMalformed(t *testing.T) {
    nan := math.NaN()
    cases := map[string]Ring{
        "empty":             nil,
        "two points":        {{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}},
        "closed two points": {{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 0, Lng: 0}},
        "nan vertex":        {{Lat: 0, Lng: 0}, {Lat: 0, Lng: 2}, {Lat: nan, Lng: 2}, {Lat: 2, Lng: 0}},
        "inf vertex":        {{Lat: 0, Lng: 0}, {Lat: 0, Lng: math.Inf(1)}, {Lat: 2, Lng: 2}},
        "collinear":         {{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}},
        "collinear closed":  {{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 0, Lng: 0}},
    }
    for name, r := range cases {
        t.Run(name, func(t *testing.T) {
            assert.False(t, Contains(Point{Lat: 0.5, Lng: 0.5}, r))
            assert.False(t, Contains(Point{Lat: 0, Lng: 0}, r))
        })
    }
}

func TestContainsNonFinitePoint(t *testing.T) {
    assert.False(t, Contains(Point{Lat: math.NaN(), Lng: 1}, square))
    assert.False(t, Contains(Point{Lat: 1, Lng: math.Inf(-1)}, square))
}

func TestCentroidDegenerate(t *testing.T) {
    line := Ring{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}
    c := centroid(line)
    assert.InDelta(t, 1, c.Lat, 1e-12)
    assert.InDelta(t, 1, c.Lng, 1e-12)
}
