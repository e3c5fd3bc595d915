package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zone-api/internal/logger"
	"zone-api/internal/metrics"
	"zone-api/internal/zone"
)

const DefaultAMapEndpoint = "https://restapi.amap.com"

// 文档注释：高德地理编码响应结构
// 背景：对齐 /v3/geocode/geo 的返回字段，仅解析坐标与行政区；status/infocode 用于错误判定。
type amapGeoResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Geocodes []struct {
		FormattedAddress string `json:"formatted_address"`
		Province         any    `json:"province"`
		City             any    `json:"city"`
		Location         string `json:"location"` // "lng,lat"（GCJ-02）
	} `json:"geocodes"`
}

// 文档注释：高德地理编码客户端
// 背景：高德返回 GCJ-02 坐标，与区域多边形（WGS84）比较前需转换；境外坐标原样返回。
// 约束：需服务端密钥；status!="1" 或无候选视为失败。
type AMap struct {
	endpoint string
	key      string
	client   *http.Client
}

func NewAMap(endpoint, key string, client *http.Client) *AMap {
	if endpoint == "" {
		endpoint = DefaultAMapEndpoint
	}
	return &AMap{endpoint: strings.TrimRight(endpoint, "/"), key: key, client: defaultClient(client)}
}

func (a *AMap) Name() string { return "amap" }

func (a *AMap) Geocode(ctx context.Context, address string) (zone.Point, error) {
	if a.key == "" {
		return zone.Point{}, ErrMissingKey
	}
	q := url.Values{}
	q.Set("key", a.key)
	q.Set("address", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"/v3/geocode/geo?"+q.Encode(), nil)
	if err != nil {
		return zone.Point{}, err
	}
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.WithLabelValues(a.Name()).Inc()
	logger.L().Debug("amap_req", "address_len", len(address))
	resp, err := a.client.Do(req)
	if err != nil {
		logger.L().Error("geocode_http_error", "provider", a.Name(), "err", err)
		metrics.GeocodeFailTotal.WithLabelValues(a.Name()).Inc()
		return zone.Point{}, err
	}
	defer resp.Body.Close()
	var r amapGeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		logger.L().Error("geocode_decode_error", "provider", a.Name(), "err", err)
		metrics.GeocodeFailTotal.WithLabelValues(a.Name()).Inc()
		return zone.Point{}, err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.GeocodeDurationMs.WithLabelValues(a.Name()).Observe(float64(dur))
	logger.L().Debug("amap_resp", "status", r.Status, "infocode", r.Infocode, "count", len(r.Geocodes), "duration_ms", dur)
	if r.Status != "1" {
		metrics.GeocodeFailTotal.WithLabelValues(a.Name()).Inc()
		return zone.Point{}, fmt.Errorf("amap error %s: %s", r.Infocode, r.Info)
	}
	if len(r.Geocodes) == 0 {
		metrics.GeocodeFailTotal.WithLabelValues(a.Name()).Inc()
		return zone.Point{}, ErrNotFound
	}
	lng, lat, ok := parseLngLat(r.Geocodes[0].Location)
	if !ok {
		metrics.GeocodeFailTotal.WithLabelValues(a.Name()).Inc()
		return zone.Point{}, fmt.Errorf("amap: bad location %q", r.Geocodes[0].Location)
	}
	metrics.GeocodeSuccessTotal.WithLabelValues(a.Name()).Inc()
	wlat, wlng := gcj02ToWGS84(lat, lng)
	return zone.Point{Lat: wlat, Lng: wlng}, nil
}

func parseLngLat(s string) (float64, float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lng, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lng, lat, true
}
