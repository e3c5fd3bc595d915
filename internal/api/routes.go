// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zone-api/internal/ingest"
	"zone-api/internal/logger"
	"zone-api/internal/metrics"
	"zone-api/internal/store"
	"zone-api/internal/zone"
)

const (
	maxResolveBody = 64 << 10
	maxDatasetBody = 16 << 20
)

var errMissingLocation = errors.New("missing location: provide lat/lng or address fields")

// VisitorHinter：访客 IP 定位（*iphint.Chain 实现）
type VisitorHinter interface {
	Lookup(ip string) (zone.PartialAddress, string, bool)
}

// 文档注释：路由依赖
// 背景：Repo 与 Hints 可为 nil；缺少仓库时管理接口返回 503，缺少 IP 库时访客接口返回未覆盖。
type Deps struct {
	Engine     *zone.Engine
	Repo       store.Repository
	Hints      VisitorHinter
	AdminToken string
}

type server struct {
	Deps
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	s := &server{Deps: d}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /zones", instrument("zones", s.listZones))
	mux.HandleFunc("GET /zones/{id}", instrument("zone", s.getZone))
	mux.HandleFunc("GET /zones/{id}/slots", instrument("zone_slots", s.zoneSlots))
	mux.HandleFunc("GET /resolve", instrument("resolve", s.resolveQuery))
	mux.HandleFunc("POST /resolve", instrument("resolve", s.resolveBody))
	mux.HandleFunc("GET /visitor", instrument("visitor", s.visitor))
	mux.HandleFunc("GET /slots/catalog", instrument("catalog", s.catalog))
	mux.HandleFunc("POST /admin/zones", instrument("admin_zones", s.admin(s.putZones)))
	mux.HandleFunc("POST /admin/reload", instrument("admin_reload", s.admin(s.reload)))
	mux.HandleFunc("GET /healthz", s.health)
	return mux
}

func instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		h(w, r)
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}

// admin：x-admin-token 校验；未配置令牌时管理接口整体关闭
func (s *server) admin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("x-admin-token")
		if s.AdminToken == "" || subtle.ConstantTimeCompare([]byte(t), []byte(s.AdminToken)) != 1 {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		h(w, r)
	}
}

func (s *server) listZones(w http.ResponseWriter, r *http.Request) {
	ds := s.Engine.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"zones":    ds.Zones(),
		"count":    ds.Len(),
		"built_at": ds.BuiltAt,
	})
}

func (s *server) getZone(w http.ResponseWriter, r *http.Request) {
	z, ok := s.Engine.Snapshot().Zone(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "zone not found")
		return
	}
	writeJSON(w, http.StatusOK, z)
}

// 未知区域同样返回 200：完整目录 + 空推荐
func (s *server) zoneSlots(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ds := s.Engine.Snapshot()
	writeJSON(w, http.StatusOK, slotsResponse{
		Available:   zone.AvailableSlots(id, ds),
		Recommended: zone.RecommendedSlots(id, ds),
	})
}

func (s *server) catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"slots": zone.Catalog()})
}

func (s *server) resolveQuery(w http.ResponseWriter, r *http.Request) {
	loc, err := parseResolveQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toResponse(s.Engine.Resolve(r.Context(), loc)))
}

func (s *server) resolveBody(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResolveBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	in := req.partial()
	if isEmpty(in) {
		writeError(w, http.StatusBadRequest, errMissingLocation.Error())
		return
	}
	writeJSON(w, http.StatusOK, toResponse(s.Engine.Resolve(r.Context(), in)))
}

// 文档注释：访客区域预选
// 背景：按访客 IP 推测位置后走与地址相同的层级链；无可用 IP 库或未命中时返回 covered=false。
func (s *server) visitor(w http.ResponseWriter, r *http.Request) {
	ip := getVisitorIP(r)
	out := visitorResponse{IP: ip}
	if s.Hints != nil && ip != "" {
		if hint, src, ok := s.Hints.Lookup(ip); ok {
			out.Source = src
			out.resolveResponse = toResponse(s.Engine.Resolve(r.Context(), hint))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// 文档注释：上传并启用新数据集
// 背景：先完整校验再持久化，最后原子替换；任一步失败都不影响正在服务的快照。
// 约束：规范化后为空的数据集被拒绝（422），避免误操作清空覆盖范围。
func (s *server) putZones(w http.ResponseWriter, r *http.Request) {
	if s.Repo == nil {
		writeError(w, http.StatusServiceUnavailable, "no zone repository configured")
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDatasetBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "dataset too large")
		return
	}
	ds, err := zone.LoadDataset(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ds.Len() == 0 {
		writeError(w, http.StatusUnprocessableEntity, "dataset contains no valid zones")
		return
	}
	if err := s.Repo.Save(r.Context(), raw); err != nil {
		logger.L().Error("dataset_save_error", "err", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	s.Engine.Swap(ds)
	writeJSON(w, http.StatusOK, map[string]any{"zones": ds.Len()})
}

func (s *server) reload(w http.ResponseWriter, r *http.Request) {
	if s.Repo == nil {
		writeError(w, http.StatusServiceUnavailable, "no zone repository configured")
		return
	}
	if err := ingest.ReloadOnce(r.Context(), s.Repo, s.Engine); err != nil {
		logger.L().Error("dataset_reload_error", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"zones": s.Engine.Snapshot().Len()})
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	ds := s.Engine.Snapshot()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Zones: ds.Len(), BuiltAt: ds.BuiltAt})
}

// 文档注释：解析 GET /resolve 查询参数
// 背景：仅有 lat/lng 时按坐标解析；带任何地址字段时按部分地址解析（坐标作为第一层）。
// 约束：lat 与 lng 必须成对出现且为有限数字；否则返回错误（400）。
func parseResolveQuery(q url.Values) (zone.Location, error) {
	var pt *zone.Point
	if q.Has("lat") || q.Has("lng") {
		lat, err := parseCoord(q.Get("lat"))
		if err != nil {
			return nil, errors.New("invalid lat")
		}
		lng, err := parseCoord(q.Get("lng"))
		if err != nil {
			return nil, errors.New("invalid lng")
		}
		pt = &zone.Point{Lat: lat, Lng: lng}
	}
	in := zone.PartialAddress{
		Address:    strings.TrimSpace(q.Get("address")),
		City:       strings.TrimSpace(q.Get("city")),
		Province:   strings.TrimSpace(q.Get("province")),
		PostalCode: strings.TrimSpace(q.Get("postal_code")),
	}
	if in.PostalCode == "" {
		in.PostalCode = strings.TrimSpace(q.Get("postalCode"))
	}
	if isEmpty(in) {
		if pt == nil {
			return nil, errMissingLocation
		}
		return *pt, nil
	}
	in.Coordinates = pt
	return in, nil
}

func parseCoord(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}

func isEmpty(a zone.PartialAddress) bool {
	return a.Coordinates == nil && strings.TrimSpace(a.Address) == "" && strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.Province) == "" && strings.TrimSpace(a.PostalCode) == ""
}

func toResponse(res zone.Resolution) resolveResponse {
	out := resolveResponse{Covered: res.Covered, MatchedBy: string(res.MatchedBy)}
	if res.Covered {
		z := res.Zone
		out.Zone = &z
		out.Slots = &slotsResponse{Available: zone.AvailableFor(z), Recommended: zone.RecommendedFor(z)}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
