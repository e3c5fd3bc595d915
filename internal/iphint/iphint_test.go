package iphint

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"zone-api/internal/zone"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	cases := []struct {
		in   string
		want zone.PartialAddress
	}{
		{"中国|0|广东省|深圳市|电信", zone.PartialAddress{Province: "广东省", City: "深圳市"}},
		{"Italy|0|Puglia|Bari|0", zone.PartialAddress{Province: "Puglia", City: "Bari"}},
		{"0|0|0|内网IP|内网IP", zone.PartialAddress{City: "内网IP"}},
		{"Italy|0|0|0|0", zone.PartialAddress{}},
		{"Italy|0|Unknown", zone.PartialAddress{}},
		{"", zone.PartialAddress{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseRegion(tc.in), tc.in)
	}
}

func TestCityToAddress(t *testing.T) {
	var rec geoip2.City
	require.NoError(t, json.Unmarshal([]byte(`{
	  "City": {"Names": {"en": "Bari", "it": "Bari"}},
	  "Subdivisions": [{"Names": {"en": "Apulia", "it": "Puglia"}}],
	  "Postal": {"Code": "70121"},
	  "Location": {"Latitude": 41.1177, "Longitude": 16.8719}
	}`), &rec))

	a, ok := cityToAddress(&rec, "it")
	require.True(t, ok)
	assert.Equal(t, "Bari", a.City)
	assert.Equal(t, "Puglia", a.Province)
	assert.Equal(t, "70121", a.PostalCode)
	require.NotNil(t, a.Coordinates)
	assert.Equal(t, zone.Point{Lat: 41.1177, Lng: 16.8719}, *a.Coordinates)

	a, _ = cityToAddress(&rec, "fr")
	assert.Equal(t, "Apulia", a.Province)

	_, ok = cityToAddress(&geoip2.City{}, "en")
	assert.False(t, ok)
}

func TestOpenMissingDatabases(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenMMDB(filepath.Join(dir, "missing.mmdb"), "en")
	assert.Error(t, err)
	_, err = OpenIP2Region(filepath.Join(dir, "missing.xdb"), "")
	assert.Error(t, err)
	_, err = OpenIP2Region("", "")
	assert.Error(t, err)
}

type stubSource struct {
	name string
	hits map[string]zone.PartialAddress
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Lookup(ip string) (zone.PartialAddress, bool) {
	a, ok := s.hits[ip]
	return a, ok
}

func TestChainFirstHitWins(t *testing.T) {
	precise := stubSource{name: "mmdb", hits: map[string]zone.PartialAddress{
		"192.0.2.1": {City: "Bari", Coordinates: &zone.Point{Lat: 41.1, Lng: 16.8}},
	}}
	coarse := stubSource{name: "ip2region", hits: map[string]zone.PartialAddress{
		"192.0.2.1": {City: "Altamura"},
		"192.0.2.2": {Province: "Puglia"},
	}}
	c := NewChain(precise, nil, coarse)
	assert.Equal(t, 2, c.Len())

	a, src, ok := c.Lookup("192.0.2.1")
	require.True(t, ok)
	assert.Equal(t, "mmdb", src)
	assert.Equal(t, "Bari", a.City)

	a, src, ok = c.Lookup("192.0.2.2")
	require.True(t, ok)
	assert.Equal(t, "ip2region", src)
	assert.Equal(t, "Puglia", a.Province)

	_, _, ok = c.Lookup("198.51.100.1")
	assert.False(t, ok)
}

type closingSource struct {
	stubSource
	closed bool
	err    error
}

func (s *closingSource) Close() error {
	s.closed = true
	return s.err
}

func TestChainCloseReleasesSources(t *testing.T) {
	db := &closingSource{stubSource: stubSource{name: "mmdb"}}
	broken := &closingSource{stubSource: stubSource{name: "ip2region"}, err: errors.New("busy")}
	plain := stubSource{name: "static"}
	c := NewChain(db, plain, broken)

	err := c.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ip2region: busy")
	assert.True(t, db.closed)
	assert.True(t, broken.closed)

	assert.NoError(t, NewChain(plain).Close())
}
