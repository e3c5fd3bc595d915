package zone

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

// 三个区域：centro（矩形，带中心与时段限制）、nord（无多边形）、sud（未闭合矩形，无中心）
const flatFixture = `[
  {"id": "centro", "name": "Centro", "description": "Città vecchia", "color": "#FF0000",
   "cities": ["Bari"], "provinces": ["BA"], "postalCodes": ["70121", "70122"],
   "polygon": {"rings": [[[16.85, 41.10], [16.90, 41.10], [16.90, 41.13], [16.85, 41.13], [16.85, 41.10]]],
               "center": {"lat": 41.115, "lng": 16.875}},
   "timeSlotRestrictions": {"excludedSlots": ["07:00 - 08:00", "15:00 - 16:00"], "preferredSlots": ["10:00 - 11:00"]}},
  {"id": "nord", "name": "Nord", "cities": ["Bitonto"], "provinces": ["BA"], "postalCodes": ["70100"]},
  {"id": "sud", "name": "Sud", "cities": ["Modugno"], "provinces": ["Puglia"], "postalCodes": ["70026"],
   "polygon": {"rings": [[[16.80, 41.00], [16.85, 41.00], [16.85, 41.05], [16.80, 41.05]]]}}
]`

const featureFixture = `{"type": "FeatureCollection", "features": [
  {"type": "Feature",
   "properties": {"id": "centro", "name": "Centro", "description": "Città vecchia", "color": "#FF0000",
     "cities": ["Bari"], "provinces": ["BA"], "postalCodes": ["70121", "70122"],
     "center": {"lat": 41.115, "lng": 16.875},
     "timeSlotRestrictions": {"excludedSlots": ["07:00 - 08:00", "15:00 - 16:00"], "preferredSlots": ["10:00 - 11:00"]}},
   "geometry": {"type": "Polygon", "coordinates": [[[16.85, 41.10], [16.90, 41.10], [16.90, 41.13], [16.85, 41.13], [16.85, 41.10]]]}},
  {"type": "Feature", "id": "nord",
   "properties": {"name": "Nord", "cities": ["Bitonto"], "provinces": ["BA"], "postalCodes": ["70100"]},
   "geometry": null},
  {"type": "Feature",
   "properties": {"id": "sud", "name": "Sud", "cities": ["Modugno"], "provinces": ["Puglia"], "postalCodes": ["70026"]},
   "geometry": {"type": "Polygon", "coordinates": [[[16.80, 41.00], [16.85, 41.00], [16.85, 41.05], [16.80, 41.05]]]}}
]}`

func loadFixture(t *testing.T) *Dataset {
    t.Helper()
    ds, err := LoadDataset([]byte(flatFixture))
    require.NoError(t, err)
    require.Equal(t, 3, ds.Len())
    return ds
}

// fakeGeocoder 记录调用；delay>0 时等待 delay 或 ctx 取消
type fakeGeocoder struct {
    pt        Point
    err       error
    delay     time.Duration
    calls     int
    lastQuery string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (Point, error) {
    f.calls++
    f.lastQuery = address
    if f.delay > 0 {
        select {
        case <-time.After(f.delay):
        case <-ctx.Done():
            return Point{}, ctx.Err()
        }
    }
    return f.pt, f.err
}
