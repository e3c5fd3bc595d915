package zone

import (
    "context"
    "time"

    "zone-api/internal/logger"
    "zone-api/internal/metrics"
)

// 文档注释：解析引擎（对外操作入口）
// 背景：绑定快照持有者与可选地理编码器，对外暴露无需显式传入数据集的查询；每次操作只读取一次快照，保证整次操作使用同一版本。
// 约束：地理编码超时默认 4s，由 ctx 传递给协作方；引擎自身不持有可变状态。
type Engine struct {
    store          *Store
    geocoder       Geocoder
    geocodeTimeout time.Duration
}

// NewEngine geocoder 可为 nil（跳过地理编码层）；timeout<=0 使用默认值
func NewEngine(store *Store, geocoder Geocoder, timeout time.Duration) *Engine {
    if store == nil { store = NewStore(nil) }
    if timeout <= 0 { timeout = 4 * time.Second }
    return &Engine{store: store, geocoder: geocoder, geocodeTimeout: timeout}
}

// Snapshot 当前快照
func (e *Engine) Snapshot() *Dataset { return e.store.Load() }

// Swap 原子替换快照
func (e *Engine) Swap(ds *Dataset) {
    old := e.store.Swap(ds)
    metrics.DatasetZones.Set(float64(e.store.Load().Len()))
    logger.L().Info("dataset_swapped", "old_zones", old.Len(), "new_zones", ds.Len())
}

// ResolveByCoordinates 按坐标解析
func (e *Engine) ResolveByCoordinates(lat, lng float64) (Zone, bool) {
    z, ok := ResolveByCoordinates(lat, lng, e.store.Load())
    observe(Resolution{Zone: z, Covered: ok, MatchedBy: tierIf(ok, TierCoordinates)})
    return z, ok
}

// ResolveByAddress 按部分地址解析
func (e *Engine) ResolveByAddress(ctx context.Context, in PartialAddress) Resolution {
    ds := e.store.Load()
    var geo Geocoder
    if e.geocoder != nil { geo = timeoutGeocoder{inner: e.geocoder, d: e.geocodeTimeout} }
    res := ResolveByAddress(ctx, in, ds, geo)
    observe(res)
    return res
}

// 文档注释：统一入口（按变体分派）
// 背景：Point 走坐标解析，PartialAddress 走层级链；其他实现不存在，返回未覆盖。
func (e *Engine) Resolve(ctx context.Context, loc Location) Resolution {
    switch v := loc.(type) {
    case Point:
        z, ok := e.ResolveByCoordinates(v.Lat, v.Lng)
        return Resolution{Zone: z, Covered: ok, MatchedBy: tierIf(ok, TierCoordinates)}
    case *Point:
        if v == nil { return Resolution{} }
        return e.Resolve(ctx, *v)
    case PartialAddress:
        return e.ResolveByAddress(ctx, v)
    case *PartialAddress:
        if v == nil { return Resolution{} }
        return e.ResolveByAddress(ctx, *v)
    }
    return Resolution{}
}

// AvailableSlots 可预约时段
func (e *Engine) AvailableSlots(zoneID string) []string { return AvailableSlots(zoneID, e.store.Load()) }

// RecommendedSlots 偏好时段
func (e *Engine) RecommendedSlots(zoneID string) []string { return RecommendedSlots(zoneID, e.store.Load()) }

type timeoutGeocoder struct {
    inner Geocoder
    d     time.Duration
}

func (t timeoutGeocoder) Geocode(ctx context.Context, address string) (Point, error) {
    ctx, cancel := context.WithTimeout(ctx, t.d)
    defer cancel()
    return t.inner.Geocode(ctx, address)
}

func tierIf(ok bool, t Tier) Tier {
    if ok { return t }
    return TierNone
}

func observe(r Resolution) {
    tier := string(r.MatchedBy)
    if !r.Covered { tier = "uncovered" }
    metrics.ResolveTotal.WithLabelValues(tier).Inc()
}
