package zone

// 规范时段目录：顺序固定，字符串逐字节匹配
var catalog = [...]string{
    "07:00 - 08:00",
    "08:00 - 09:00",
    "09:00 - 10:00",
    "10:00 - 11:00",
    "11:00 - 12:00",
    "12:00 - 13:00",
    "13:00 - 14:00",
    "14:00 - 15:00",
    "15:00 - 16:00",
}

// Catalog 返回规范时段目录副本
func Catalog() []string {
    out := make([]string, len(catalog))
    copy(out, catalog[:])
    return out
}

// IsCatalogSlot 是否为目录内时段
func IsCatalogSlot(s string) bool {
    for _, c := range catalog {
        if c == s { return true }
    }
    return false
}

// 文档注释：可预约时段
// 背景：目录去掉区域排除项并保持目录顺序；未知区域视为没有已知限制，返回完整目录（fail-open）。
// 返回：新切片，调用方可自由修改。
func AvailableSlots(zoneID string, ds *Dataset) []string {
    z, ok := ds.Zone(zoneID)
    if !ok { return Catalog() }
    return AvailableFor(z)
}

// AvailableFor 同 AvailableSlots，直接作用于已解析出的区域（与解析使用同一快照）
func AvailableFor(z Zone) []string {
    excluded := make(map[string]struct{}, len(z.TimeSlotRestrictions.ExcludedSlots))
    for _, s := range z.TimeSlotRestrictions.ExcludedSlots { excluded[s] = struct{}{} }
    out := make([]string, 0, len(catalog))
    for _, s := range catalog {
        if _, skip := excluded[s]; skip { continue }
        out = append(out, s)
    }
    return out
}

// RecommendedSlots 原样返回区域偏好时段；不对 AvailableSlots 排序或过滤
func RecommendedSlots(zoneID string, ds *Dataset) []string {
    z, ok := ds.Zone(zoneID)
    if !ok { return []string{} }
    return RecommendedFor(z)
}

// RecommendedFor 同 RecommendedSlots，直接作用于区域
func RecommendedFor(z Zone) []string {
    out := make([]string, len(z.TimeSlotRestrictions.PreferredSlots))
    copy(out, z.TimeSlotRestrictions.PreferredSlots)
    return out
}
