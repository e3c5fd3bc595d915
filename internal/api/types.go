package api

import (
    "time"

    "zone-api/internal/zone"
)

// 文档注释：解析返回结构（对外）
// 背景：未覆盖同样以 200 返回，covered=false 且 zone/slots 为 null；前端据此提示“暂不配送”。
// 约束：字段稳定；新增字段需评估兼容性与前端依赖。
type resolveResponse struct {
    Covered   bool           `json:"covered"`
    MatchedBy string         `json:"matched_by"`
    Zone      *zone.Zone     `json:"zone"`
    Slots     *slotsResponse `json:"slots"`
}

type slotsResponse struct {
    Available   []string `json:"available"`
    Recommended []string `json:"recommended"`
}

type visitorResponse struct {
    IP     string `json:"ip"`
    Source string `json:"source"`
    resolveResponse
}

// 文档注释：POST /resolve 请求体
// 背景：兼容前端地址控件的 camelCase 与后端习惯的 snake_case；坐标可嵌套或平铺。
type resolveRequest struct {
    Address     string      `json:"address"`
    City        string      `json:"city"`
    Province    string      `json:"province"`
    PostalCode  string      `json:"postalCode"`
    PostalCode2 string      `json:"postal_code"`
    Coordinates *zone.Point `json:"coordinates"`
    Lat         *float64    `json:"lat"`
    Lng         *float64    `json:"lng"`
}

func (q resolveRequest) partial() zone.PartialAddress {
    a := zone.PartialAddress{Address: q.Address, City: q.City, Province: q.Province, PostalCode: q.PostalCode}
    if a.PostalCode == "" { a.PostalCode = q.PostalCode2 }
    switch {
    case q.Coordinates != nil:
        p := *q.Coordinates
        a.Coordinates = &p
    case q.Lat != nil && q.Lng != nil:
        a.Coordinates = &zone.Point{Lat: *q.Lat, Lng: *q.Lng}
    }
    return a
}

type healthResponse struct {
    Status  string    `json:"status"`
    Zones   int       `json:"zones"`
    BuiltAt time.Time `json:"built_at"`
}

type errorResponse struct {
    Error string `json:"error"`
}
