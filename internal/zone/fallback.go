package zone

import (
    "context"
    "strings"

    "golang.org/x/text/cases"
    "golang.org/x/text/unicode/norm"

    "zone-api/internal/logger"
)

// 文档注释：地理编码协作方
// 背景：外部服务，将自由文本地址转换为坐标；超时与取消由 ctx 控制。
// 约束：失败（含超时、无结果）返回 error；解析器只消费结果，不重试。
type Geocoder interface {
    Geocode(ctx context.Context, address string) (Point, error)
}

// 文档注释：按部分地址解析区域（固定优先级层级链）
// 背景：坐标 → 地理编码后按坐标 → 邮编精确 → 城市子串（双向、忽略大小写）→ 省精确；任一层命中即返回。
// 约束：缺少输入字段的层级被跳过而非视为失败；地理编码失败直接进入下一层；全部未命中返回 Covered=false。
func ResolveByAddress(ctx context.Context, in PartialAddress, ds *Dataset, geo Geocoder) Resolution {
    in = trimAddress(in)
    if ds == nil { return Resolution{} }
    // 1. 直接坐标
    if in.Coordinates != nil {
        if z, ok := ResolveByCoordinates(in.Coordinates.Lat, in.Coordinates.Lng, ds); ok {
            return Resolution{Zone: z, Covered: true, MatchedBy: TierCoordinates}
        }
    }
    // 2. 地理编码后按坐标
    if in.Coordinates == nil && geo != nil && in.Address != "" && (in.City != "" || in.PostalCode != "") {
        q := GeocodeQuery(in)
        pt, err := geo.Geocode(ctx, q)
        if err != nil {
            logger.L().Debug("zone_geocode_fallthrough", "query", q, "err", err)
        } else if z, ok := ResolveByCoordinates(pt.Lat, pt.Lng, ds); ok {
            return Resolution{Zone: z, Covered: true, MatchedBy: TierGeocode}
        }
    }
    // 3. 邮编
    if in.PostalCode != "" {
        for _, z := range ds.zones {
            if containsExact(z.PostalCodes, in.PostalCode) {
                return Resolution{Zone: z.clone(), Covered: true, MatchedBy: TierPostalCode}
            }
        }
    }
    // 4. 城市
    if in.City != "" {
        city := fold(in.City)
        for _, z := range ds.zones {
            for _, c := range z.Cities {
                zc := fold(c)
                if zc == "" { continue }
                if strings.Contains(city, zc) || strings.Contains(zc, city) {
                    return Resolution{Zone: z.clone(), Covered: true, MatchedBy: TierCity}
                }
            }
        }
    }
    // 5. 省
    if in.Province != "" {
        for _, z := range ds.zones {
            if containsExact(z.Provinces, in.Province) {
                return Resolution{Zone: z.clone(), Covered: true, MatchedBy: TierProvince}
            }
        }
    }
    return Resolution{}
}

// GeocodeQuery 组装地理编码查询串：address, postalCode city, province
func GeocodeQuery(in PartialAddress) string {
    parts := make([]string, 0, 3)
    if in.Address != "" { parts = append(parts, in.Address) }
    locality := strings.TrimSpace(in.PostalCode + " " + in.City)
    if locality != "" { parts = append(parts, locality) }
    if in.Province != "" { parts = append(parts, in.Province) }
    return strings.Join(parts, ", ")
}

func trimAddress(in PartialAddress) PartialAddress {
    in.Address = strings.TrimSpace(in.Address)
    in.City = strings.TrimSpace(in.City)
    in.Province = strings.TrimSpace(in.Province)
    in.PostalCode = strings.TrimSpace(in.PostalCode)
    if in.Coordinates != nil && !finite(*in.Coordinates) { in.Coordinates = nil }
    return in
}

func containsExact(list []string, v string) bool {
    for _, s := range list {
        if s == v { return true }
    }
    return false
}

// NFC 规范化后做完整大小写折叠（处理 "Città" 等组合字符）
func fold(s string) string {
    return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}
