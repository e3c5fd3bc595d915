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

const DefaultNominatimEndpoint = "https://nominatim.openstreetmap.org"

// 文档注释：Nominatim 兼容的正向地理编码客户端
// 背景：/search?format=jsonv2&limit=1&q= 返回候选数组，取第一个；坐标为字符串形式的 WGS84。
// 约束：公共实例要求可识别的 User-Agent；不重试，失败由上层层级链降级处理。
type Nominatim struct {
	endpoint  string
	userAgent string
	country   string
	client    *http.Client
}

// NewNominatim：endpoint 为空时使用公共实例；country 为 ISO 国家码过滤（可空）
func NewNominatim(endpoint, userAgent, country string, client *http.Client) *Nominatim {
	if endpoint == "" {
		endpoint = DefaultNominatimEndpoint
	}
	return &Nominatim{endpoint: strings.TrimRight(endpoint, "/"), userAgent: userAgent, country: country, client: defaultClient(client)}
}

func (n *Nominatim) Name() string { return "nominatim" }

type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (n *Nominatim) Geocode(ctx context.Context, address string) (zone.Point, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	if n.country != "" {
		q.Set("countrycodes", n.country)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"/search?"+q.Encode(), nil)
	if err != nil {
		return zone.Point{}, err
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	req.Header.Set("Accept", "application/json")
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.WithLabelValues(n.Name()).Inc()
	defer func() {
		metrics.GeocodeDurationMs.WithLabelValues(n.Name()).Observe(float64(time.Since(t0).Milliseconds()))
	}()
	resp, err := n.client.Do(req)
	if err != nil {
		logger.L().Error("geocode_http_error", "provider", n.Name(), "err", err)
		metrics.GeocodeFailTotal.WithLabelValues(n.Name()).Inc()
		return zone.Point{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeFailTotal.WithLabelValues(n.Name()).Inc()
		return zone.Point{}, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	var hits []nominatimHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		logger.L().Error("geocode_decode_error", "provider", n.Name(), "err", err)
		metrics.GeocodeFailTotal.WithLabelValues(n.Name()).Inc()
		return zone.Point{}, err
	}
	if len(hits) == 0 {
		metrics.GeocodeFailTotal.WithLabelValues(n.Name()).Inc()
		return zone.Point{}, ErrNotFound
	}
	lat, err1 := strconv.ParseFloat(hits[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(hits[0].Lon, 64)
	if err1 != nil || err2 != nil {
		metrics.GeocodeFailTotal.WithLabelValues(n.Name()).Inc()
		return zone.Point{}, fmt.Errorf("nominatim: bad coordinates %q,%q", hits[0].Lat, hits[0].Lon)
	}
	metrics.GeocodeSuccessTotal.WithLabelValues(n.Name()).Inc()
	logger.L().Debug("nominatim_resp", "lat", lat, "lng", lng, "display", hits[0].DisplayName)
	return zone.Point{Lat: lat, Lng: lng}, nil
}
