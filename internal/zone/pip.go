package zone

import "math"

// 文档注释：点入环判定（Even-Odd，边界包含）
// 背景：每个 (区域, 环) 组合每次查询调用一次；落在边或顶点上的点明确视为命中，不依赖射线算法在临界值上的偶然行为。
// 约束：顶点少于 3 个、含非有限坐标或面积为零的环永不命中；首尾重复顶点可有可无；不校验自相交。
func Contains(pt Point, ring Ring) bool {
    if !validRing(ring) || !finite(pt) { return false }
    n := len(ring)
    x := pt.Lng
    y := pt.Lat
    for i, j := 0, n-1; i < n; j, i = i, i+1 {
        if onSegment(pt, ring[j], ring[i]) { return true }
    }
    inside := false
    for i, j := 0, n-1; i < n; j, i = i, i+1 {
        xi := ring[i].Lng; yi := ring[i].Lat
        xj := ring[j].Lng; yj := ring[j].Lat
        if (yi > y) != (yj > y) {
            // yi != yj 由上一条件保证，无需加 epsilon
            xCross := (xj-xi)*(y-yi)/(yj-yi) + xi
            if x < xCross { inside = !inside }
        }
    }
    return inside
}

// 点是否在线段 ab 上（叉积为零且位于包围盒内）
func onSegment(p, a, b Point) bool {
    cross := (b.Lng-a.Lng)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lng-a.Lng)
    if math.Abs(cross) > 1e-12 { return false }
    return p.Lng >= math.Min(a.Lng, b.Lng) && p.Lng <= math.Max(a.Lng, b.Lng) &&
        p.Lat >= math.Min(a.Lat, b.Lat) && p.Lat <= math.Max(a.Lat, b.Lat)
}

func validRing(r Ring) bool {
    if len(r) < 3 { return false }
    for _, p := range r {
        if !finite(p) { return false }
    }
    // 去掉闭合点后仍需至少 3 个顶点
    if len(r) == 3 && r[0] == r[2] { return false }
    // 零面积（全部共线）的环不围住任何区域
    return math.Abs(shoelace(r)) >= minRingArea
}

// 面积阈值（平方度），远小于任何实际配送区域
const minRingArea = 1e-18

// 有向面积的两倍；首尾是否闭合不影响结果
func shoelace(r Ring) float64 {
    n := len(r)
    if n > 1 && r[0] == r[n-1] { n-- }
    var a float64
    for i := 0; i < n; i++ {
        p := r[i]; q := r[(i+1)%n]
        a += p.Lng*q.Lat - q.Lng*p.Lat
    }
    return a
}

func finite(p Point) bool {
    return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) && !math.IsInf(p.Lat, 0) && !math.IsInf(p.Lng, 0)
}

// 快速包围盒过滤（闭区间，与边界包含约定一致）
func inBBox(pt Point, b [4]float64) bool {
    return pt.Lng >= b[0] && pt.Lng <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}

func computeBBox(r Ring) [4]float64 {
    b := [4]float64{180, 90, -180, -90}
    for _, pt := range r {
        if pt.Lng < b[0] { b[0] = pt.Lng }
        if pt.Lat < b[1] { b[1] = pt.Lat }
        if pt.Lng > b[2] { b[2] = pt.Lng }
        if pt.Lat > b[3] { b[3] = pt.Lat }
    }
    return b
}

// 文档注释：环的面积质心
// 背景：数据未给出中心点时用于推导 polygon.center；面积退化（共线）时回退为顶点均值。
func centroid(r Ring) Point {
    n := len(r)
    if n > 1 && r[0] == r[n-1] { n-- }
    var cx, cy float64
    for i := 0; i < n; i++ {
        p := r[i]; q := r[(i+1)%n]
        f := p.Lng*q.Lat - q.Lng*p.Lat
        cx += (p.Lng + q.Lng) * f
        cy += (p.Lat + q.Lat) * f
    }
    a := shoelace(r)
    if math.Abs(a) < minRingArea {
        var sx, sy float64
        for i := 0; i < n; i++ { sx += r[i].Lng; sy += r[i].Lat }
        if n == 0 { return Point{} }
        return Point{Lat: sy / float64(n), Lng: sx / float64(n)}
    }
    a *= 0.5
    return Point{Lat: cy / (6 * a), Lng: cx / (6 * a)}
}
