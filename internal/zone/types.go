package zone

import (
    "math"
    "strconv"
    "time"
)

// DefaultColor 未配置颜色时的回退值
const DefaultColor = "#3B82F6"

// 文档注释：配送区域的最小数据结构
// 背景：统一承载展示元数据、非几何匹配键（城市/省/邮编）、可选多边形与时段限制；加载后只读，供并发查询共享。
// 约束：ID 在同一快照内唯一；时段限制只包含规范时段目录中的字符串；无多边形的区域只能通过非几何层级命中。
type Zone struct {
    ID                   string               `json:"id"`
    Name                 string               `json:"name"`
    Description          string               `json:"description"`
    Cities               []string             `json:"cities"`
    Provinces            []string             `json:"provinces"`
    PostalCodes          []string             `json:"postalCodes"`
    Color                string               `json:"color"`
    Polygon              *Polygon             `json:"polygon,omitempty"`
    TimeSlotRestrictions TimeSlotRestrictions `json:"timeSlotRestrictions"`
}

// TimeSlotRestrictions 区域时段限制
type TimeSlotRestrictions struct {
    ExcludedSlots  []string `json:"excludedSlots"`
    PreferredSlots []string `json:"preferredSlots"`
}

// clone 深拷贝：切片与多边形均不与快照共享底层内存
func (z Zone) clone() Zone {
    z.Cities = cloneStrings(z.Cities)
    z.Provinces = cloneStrings(z.Provinces)
    z.PostalCodes = cloneStrings(z.PostalCodes)
    z.TimeSlotRestrictions.ExcludedSlots = cloneStrings(z.TimeSlotRestrictions.ExcludedSlots)
    z.TimeSlotRestrictions.PreferredSlots = cloneStrings(z.TimeSlotRestrictions.PreferredSlots)
    if z.Polygon != nil {
        p := &Polygon{Center: z.Polygon.Center}
        if z.Polygon.Rings != nil {
            p.Rings = make([]Ring, len(z.Polygon.Rings))
            for i, r := range z.Polygon.Rings { p.Rings[i] = append(Ring(nil), r...) }
        }
        if z.Polygon.BBoxes != nil { p.BBoxes = append([][4]float64(nil), z.Polygon.BBoxes...) }
        z.Polygon = p
    }
    return z
}

// nil 保持为 nil，空切片保持为空切片（JSON 输出不变）
func cloneStrings(in []string) []string {
    if in == nil { return nil }
    out := make([]string, len(in))
    copy(out, in)
    return out
}

// 文档注释：区域多边形
// 背景：环之间相互独立，任意一环包含查询点即视为命中（不按 GeoJSON 外环/洞解释）。
// 约束：BBoxes 与 Rings 一一对应，仅用于预过滤，不改变判定结果。
type Polygon struct {
    Rings  []Ring       `json:"rings"`
    Center Point        `json:"center"`
    BBoxes [][4]float64 `json:"-"` // minLng, minLat, maxLng, maxLat
}

// Ring 有序顶点序列，首尾是否重复均可
type Ring []Point

// MarshalJSON 按 GeoJSON 约定输出 [lng, lat]
func (r Ring) MarshalJSON() ([]byte, error) {
    out := make([]byte, 0, len(r)*24+2)
    out = append(out, '[')
    for i, p := range r {
        if i > 0 { out = append(out, ',') }
        out = append(out, '[')
        out = appendFloat(out, p.Lng)
        out = append(out, ',')
        out = appendFloat(out, p.Lat)
        out = append(out, ']')
    }
    out = append(out, ']')
    return out, nil
}

// 非有限值输出 null，避免生成非法 JSON
func appendFloat(b []byte, f float64) []byte {
    if math.IsNaN(f) || math.IsInf(f, 0) { return append(b, "null"...) }
    return strconv.AppendFloat(b, f, 'f', -1, 64)
}

// 点坐标（WGS84）
type Point struct {
    Lat float64 `json:"lat"`
    Lng float64 `json:"lng"`
}

// 文档注释：定位输入（带标签的变体）
// 背景：调用方提供精确坐标或部分地址之一；统一由 Engine.Resolve 分派。
// 约束：仅 Point 与 PartialAddress 实现该接口。
type Location interface {
    isLocation()
}

func (Point) isLocation() {}

// 文档注释：部分地址
// 背景：来自前端地址控件，字段均可缺省；若携带坐标则优先走几何判定。
type PartialAddress struct {
    Address     string `json:"address,omitempty"`
    City        string `json:"city,omitempty"`
    Province    string `json:"province,omitempty"`
    PostalCode  string `json:"postalCode,omitempty"`
    Coordinates *Point `json:"coordinates,omitempty"`
}

func (PartialAddress) isLocation() {}

// Tier 命中层级
type Tier string

const (
    TierNone        Tier = ""
    TierCoordinates Tier = "coordinates"
    TierGeocode     Tier = "geocode"
    TierPostalCode  Tier = "postal_code"
    TierCity        Tier = "city"
    TierProvince    Tier = "province"
)

// 文档注释：解析结果
// 背景：未覆盖是正常结果（Covered=false），不以错误表达；MatchedBy 便于统计与排查。
type Resolution struct {
    Zone      Zone
    Covered   bool
    MatchedBy Tier
}

// 文档注释：数据集快照
// 背景：加载期一次性规范化得到的只读区域集合；更新时构建新快照并整体替换，而不是原地修改。
// 约束：所有字段在构造后不再改变；对外返回的区域均为深拷贝，调用方修改不影响快照。
type Dataset struct {
    zones   []Zone
    byID    map[string]int
    BuiltAt time.Time
}

// NewDataset 以给定顺序构建快照；重复 ID 仅保留首次出现
func NewDataset(zones []Zone) *Dataset {
    d := &Dataset{byID: make(map[string]int, len(zones)), BuiltAt: time.Now()}
    for _, z := range zones {
        if _, dup := d.byID[z.ID]; dup { continue }
        d.byID[z.ID] = len(d.zones)
        d.zones = append(d.zones, z)
    }
    return d
}

// Len 区域数量
func (d *Dataset) Len() int {
    if d == nil { return 0 }
    return len(d.zones)
}

// Zones 返回按存储顺序排列的区域副本
func (d *Dataset) Zones() []Zone {
    if d == nil { return nil }
    out := make([]Zone, len(d.zones))
    for i := range d.zones { out[i] = d.zones[i].clone() }
    return out
}

// Zone 按 ID 查找
func (d *Dataset) Zone(id string) (Zone, bool) {
    if d == nil { return Zone{}, false }
    i, ok := d.byID[id]
    if !ok { return Zone{}, false }
    return d.zones[i].clone(), true
}
