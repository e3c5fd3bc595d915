package zone

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestAvailableSlotsExcludes(t *testing.T) {
    ds := loadFixture(t)
    got := AvailableSlots("centro", ds)
    assert.Equal(t, []string{
        "08:00 - 09:00", "09:00 - 10:00", "10:00 - 11:00", "11:00 - 12:00",
        "12:00 - 13:00", "13:00 - 14:00", "14:00 - 15:00",
    }, got)
}

func TestAvailableSlotsUnknownZone(t *testing.T) {
    ds := loadFixture(t)
    assert.Equal(t, Catalog(), AvailableSlots("missing", ds))
    assert.Len(t, AvailableSlots("missing", nil), 9)
    assert.Equal(t, Catalog(), AvailableSlots("nord", ds))
}

func TestAvailableSlotsMatchesCatalogMinusExcluded(t *testing.T) {
    ds := loadFixture(t)
    for _, z := range ds.Zones() {
        got := AvailableSlots(z.ID, ds)
        excluded := map[string]struct{}{}
        for _, s := range z.TimeSlotRestrictions.ExcludedSlots {
            if IsCatalogSlot(s) { excluded[s] = struct{}{} }
        }
        assert.Len(t, got, len(catalog)-len(excluded), z.ID)
        for _, s := range z.TimeSlotRestrictions.ExcludedSlots {
            assert.NotContains(t, got, s)
        }
    }
}

func TestAvailableForDuplicateExclusions(t *testing.T) {
    z := Zone{ID: "dup", TimeSlotRestrictions: TimeSlotRestrictions{
        ExcludedSlots: []string{"07:00 - 08:00", "07:00 - 08:00"},
    }}
    got := AvailableFor(z)
    assert.Len(t, got, 8)
    assert.Equal(t, "08:00 - 09:00", got[0])
}

func TestRecommendedSlots(t *testing.T) {
    ds := loadFixture(t)
    assert.Equal(t, []string{"10:00 - 11:00"}, RecommendedSlots("centro", ds))
    assert.Equal(t, []string{}, RecommendedSlots("nord", ds))
    assert.Equal(t, []string{}, RecommendedSlots("missing", ds))
}

func TestSlotResultsAreFresh(t *testing.T) {
    ds := loadFixture(t)
    a := AvailableSlots("centro", ds)
    a[0] = "mutated"
    assert.Equal(t, "08:00 - 09:00", AvailableSlots("centro", ds)[0])

    r := RecommendedSlots("centro", ds)
    r[0] = "mutated"
    assert.Equal(t, "10:00 - 11:00", RecommendedSlots("centro", ds)[0])

    c := Catalog()
    c[0] = "mutated"
    assert.True(t, IsCatalogSlot("07:00 - 08:00"))
    assert.False(t, IsCatalogSlot("mutated"))
}
