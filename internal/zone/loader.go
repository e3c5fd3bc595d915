package zone

import (
    "bytes"
    "encoding/json"
    "errors"
    "io"
    "math"
    "strings"

    "zone-api/internal/logger"
    "zone-api/internal/metrics"
)

var (
    ErrInvalidJSON      = errors.New("zone dataset is not valid json")
    ErrUnsupportedShape = errors.New("zone dataset shape not recognized")
)

// Shape 原始数据形态
type Shape int

const (
    ShapeUnknown Shape = iota
    ShapeFlatArray
    ShapeFeatureCollection
)

func (s Shape) String() string {
    switch s {
    case ShapeFlatArray:
        return "flat_array"
    case ShapeFeatureCollection:
        return "feature_collection"
    default:
        return "unknown"
    }
}

// 文档注释：加载原始数据集并构建快照
// 背景：配置层问题（非 JSON、形态无法识别）以错误返回，调用方据此保留旧快照；单条记录问题只丢弃并记录日志。
// 返回：规范化后的只读快照；数据形态可识别但无有效区域时返回空快照且无错误。
func LoadDataset(raw []byte) (*Dataset, error) {
    shape, doc, err := detect(raw)
    if err != nil { return nil, err }
    if shape == ShapeUnknown { return nil, ErrUnsupportedShape }
    return NewDataset(normalizeDoc(shape, doc)), nil
}

// 文档注释：规范化（软失败）
// 背景：两种外部形态（扁平数组 / GeoJSON FeatureCollection）统一转换为规范 Zone；缺失 id/name 的记录被丢弃并告警。
// 约束：无法识别的形态返回空集合而不是错误；重复 id 保留首次出现。
func Normalize(raw []byte) []Zone {
    shape, doc, err := detect(raw)
    if err != nil || shape == ShapeUnknown {
        logger.L().Warn("zone_dataset_unrecognized", "shape", shape.String(), "err", err)
        return []Zone{}
    }
    return normalizeDoc(shape, doc)
}

// DetectShape 识别原始数据形态
func DetectShape(raw []byte) Shape {
    s, _, _ := detect(raw)
    return s
}

func detect(raw []byte) (Shape, any, error) {
    dec := json.NewDecoder(bytes.NewReader(raw))
    dec.UseNumber()
    var doc any
    if err := dec.Decode(&doc); err != nil { return ShapeUnknown, nil, ErrInvalidJSON }
    // 顶层值之后只允许空白
    if _, err := dec.Token(); err != io.EOF { return ShapeUnknown, nil, ErrInvalidJSON }
    switch v := doc.(type) {
    case []any:
        return ShapeFlatArray, v, nil
    case map[string]any:
        t := strings.ToLower(getStr(v, "type"))
        if t == "featurecollection" {
            if _, ok := v["features"].([]any); ok { return ShapeFeatureCollection, v, nil }
        }
        // 单个 Feature 视为只含一个要素的集合
        if t == "feature" {
            return ShapeFeatureCollection, map[string]any{"type": "FeatureCollection", "features": []any{v}}, nil
        }
        // 部分导出工具将数组包在 zones 字段中
        if arr, ok := v["zones"].([]any); ok { return ShapeFlatArray, arr, nil }
    }
    return ShapeUnknown, doc, nil
}

func normalizeDoc(shape Shape, doc any) []Zone {
    var entries []map[string]any
    switch shape {
    case ShapeFlatArray:
        for _, it := range doc.([]any) {
            m, _ := it.(map[string]any)
            entries = append(entries, m)
        }
    case ShapeFeatureCollection:
        feats, _ := doc.(map[string]any)["features"].([]any)
        for _, it := range feats {
            entries = append(entries, featureToEntry(it))
        }
    }
    out := make([]Zone, 0, len(entries))
    seen := make(map[string]struct{}, len(entries))
    for i, e := range entries {
        z, ok := parseZone(e)
        if !ok {
            logger.L().Warn("zone_entry_dropped", "index", i, "shape", shape.String(), "reason", "missing_id_or_name")
            metrics.DroppedEntriesTotal.WithLabelValues("missing_identity").Inc()
            continue
        }
        if _, dup := seen[z.ID]; dup {
            logger.L().Warn("zone_entry_dropped", "index", i, "id", z.ID, "reason", "duplicate_id")
            metrics.DroppedEntriesTotal.WithLabelValues("duplicate_id").Inc()
            continue
        }
        seen[z.ID] = struct{}{}
        out = append(out, z)
    }
    logger.L().Debug("zone_dataset_normalized", "shape", shape.String(), "entries", len(entries), "zones", len(out))
    return out
}

// 将 Feature 的 properties 与 geometry 合并为扁平记录，后续统一按扁平形态解析
func featureToEntry(it any) map[string]any {
    f, ok := it.(map[string]any)
    if !ok { return nil }
    e := map[string]any{}
    if p, ok := f["properties"].(map[string]any); ok {
        for k, v := range p { e[k] = v }
    }
    if _, has := e["id"]; !has {
        if id, ok := f["id"]; ok { e["id"] = id }
    }
    if g, ok := f["geometry"].(map[string]any); ok {
        poly := map[string]any{"type": g["type"], "coordinates": g["coordinates"]}
        if c, ok := e["center"]; ok { poly["center"] = c }
        e["polygon"] = poly
    }
    return e
}

func parseZone(r map[string]any) (Zone, bool) {
    var z Zone
    if r == nil { return z, false }
    z.ID = strings.TrimSpace(getID(r["id"]))
    z.Name = strings.TrimSpace(getStr(r, "name"))
    if z.ID == "" || z.Name == "" { return z, false }
    z.Description = getStr(r, "description")
    z.Color = getStr(r, "color")
    if z.Color == "" { z.Color = DefaultColor }
    z.Cities = getStrings(r, "cities")
    z.Provinces = getStrings(r, "provinces")
    z.PostalCodes = getStrings(r, "postalCodes", "postal_codes")
    if p, ok := r["polygon"].(map[string]any); ok {
        z.Polygon = parsePolygon(p)
    }
    z.TimeSlotRestrictions = parseRestrictions(z.ID, r)
    return z, true
}

func parseRestrictions(id string, r map[string]any) TimeSlotRestrictions {
    src := r
    if m, ok := r["timeSlotRestrictions"].(map[string]any); ok {
        src = m
    } else if m, ok := r["time_slot_restrictions"].(map[string]any); ok {
        src = m
    }
    return TimeSlotRestrictions{
        ExcludedSlots:  catalogOnly(id, "excluded", getStrings(src, "excludedSlots", "excluded_slots")),
        PreferredSlots: catalogOnly(id, "preferred", getStrings(src, "preferredSlots", "preferred_slots")),
    }
}

// 仅保留规范目录中的时段，重复项只保留首次出现
func catalogOnly(id, kind string, in []string) []string {
    out := make([]string, 0, len(in))
    seen := make(map[string]struct{}, len(in))
    for _, s := range in {
        if !IsCatalogSlot(s) {
            logger.L().Warn("zone_slot_dropped", "id", id, "kind", kind, "slot", s)
            continue
        }
        if _, dup := seen[s]; dup { continue }
        seen[s] = struct{}{}
        out = append(out, s)
    }
    return out
}

// 文档注释：多边形解析
// 背景：兼容 {rings|coordinates, center} 与 GeoJSON geometry（Polygon/MultiPolygon）；MultiPolygon 的所有环展开为独立环。
// 约束：坐标对按 [lng, lat] 解释；非数值坐标写入 NaN，使该环在判定期被跳过而不是在加载期报错。
func parsePolygon(p map[string]any) *Polygon {
    var rings []Ring
    coords, ok := p["rings"].([]any)
    if !ok { coords, _ = p["coordinates"].([]any) }
    if strings.EqualFold(getStr(p, "type"), "multipolygon") {
        for _, part := range coords {
            if arr, ok := part.([]any); ok { rings = append(rings, parseRings(arr)...) }
        }
    } else {
        rings = parseRings(coords)
    }
    if len(rings) == 0 { return nil }
    poly := &Polygon{Rings: rings, BBoxes: make([][4]float64, len(rings))}
    for i, r := range rings { poly.BBoxes[i] = computeBBox(r) }
    if c, ok := parseCenter(p["center"]); ok {
        poly.Center = c
    } else {
        for _, r := range rings {
            if validRing(r) { poly.Center = centroid(r); break }
        }
    }
    return poly
}

func parseRings(coords []any) []Ring {
    var out []Ring
    for _, ring := range coords {
        arr, ok := ring.([]any)
        if !ok { continue }
        rr := make(Ring, 0, len(arr))
        for _, p := range arr {
            vv, ok := p.([]any)
            if !ok || len(vv) < 2 {
                rr = append(rr, Point{Lat: math.NaN(), Lng: math.NaN()})
                continue
            }
            rr = append(rr, Point{Lat: toFloat(vv[1]), Lng: toFloat(vv[0])})
        }
        out = append(out, rr)
    }
    return out
}

func parseCenter(v any) (Point, bool) {
    switch c := v.(type) {
    case map[string]any:
        lat, lng := toFloat(c["lat"]), toFloat(c["lng"])
        if _, ok := c["lng"]; !ok { lng = toFloat(c["lon"]) }
        pt := Point{Lat: lat, Lng: lng}
        return pt, finite(pt)
    case []any:
        if len(c) < 2 { return Point{}, false }
        pt := Point{Lat: toFloat(c[1]), Lng: toFloat(c[0])}
        return pt, finite(pt)
    }
    return Point{}, false
}

func getStr(m map[string]any, k string) string {
    if v, ok := m[k].(string); ok { return v }
    return ""
}

// id 允许为字符串或数字
func getID(v any) string {
    switch x := v.(type) {
    case string:
        return x
    case json.Number:
        return x.String()
    }
    return ""
}

func getStrings(m map[string]any, keys ...string) []string {
    out := []string{}
    for _, k := range keys {
        arr, ok := m[k].([]any)
        if !ok { continue }
        for _, it := range arr {
            if s, ok := it.(string); ok && strings.TrimSpace(s) != "" { out = append(out, strings.TrimSpace(s)) }
        }
        return out
    }
    return out
}

func toFloat(v any) float64 {
    switch x := v.(type) {
    case json.Number:
        f, err := x.Float64()
        if err != nil { return math.NaN() }
        return f
    case float64:
        return x
    case float32:
        return float64(x)
    case int:
        return float64(x)
    case int64:
        return float64(x)
    default:
        return math.NaN()
    }
}
