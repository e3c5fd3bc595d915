package zone

// 文档注释：按坐标解析区域
// 背景：按快照存储顺序遍历，带多边形的区域逐环判定，返回第一个有环包含该点的区域。
// 约束：区域重叠时不做面积或“最具体”裁决，先出现者胜出（数据顺序即优先级）；畸形环被跳过而不报错。
func ResolveByCoordinates(lat, lng float64, ds *Dataset) (Zone, bool) {
    pt := Point{Lat: lat, Lng: lng}
    if ds == nil || !finite(pt) { return Zone{}, false }
    for i := range ds.zones {
        z := &ds.zones[i]
        if z.Polygon == nil { continue }
        for ri, ring := range z.Polygon.Rings {
            // 包围盒仅做预过滤
            if ri < len(z.Polygon.BBoxes) && !inBBox(pt, z.Polygon.BBoxes[ri]) { continue }
            if Contains(pt, ring) { return z.clone(), true }
        }
    }
    return Zone{}, false
}
