package zone

import (
    "strconv"
    "sync"
    "sync/atomic"
    "testing"

    "github.com/stretchr/testify/assert"
)

func generation(g int) *Dataset {
    name := strconv.Itoa(g)
    zones := make([]Zone, 0, 5)
    for i := 0; i < 5; i++ {
        zones = append(zones, Zone{ID: strconv.Itoa(i), Name: name})
    }
    return NewDataset(zones)
}

func TestStoreDefaultsToEmpty(t *testing.T) {
    s := NewStore(nil)
    assert.Equal(t, 0, s.Load().Len())
    assert.Same(t, s.Load(), s.Swap(nil))
}

func TestStoreSwapReturnsPrevious(t *testing.T) {
    a, b := generation(1), generation(2)
    s := NewStore(a)
    assert.Same(t, a, s.Swap(b))
    assert.Same(t, b, s.Load())
}

func TestStoreConcurrentSwapNeverMixes(t *testing.T) {
    s := NewStore(generation(0))
    var mixed atomic.Int64
    var wg sync.WaitGroup
    stop := make(chan struct{})
    for r := 0; r < 8; r++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for {
                select {
                case <-stop:
                    return
                default:
                }
                zones := s.Load().Zones()
                for _, z := range zones[1:] {
                    if z.Name != zones[0].Name {
                        mixed.Add(1)
                    }
                }
            }
        }()
    }
    for g := 1; g <= 500; g++ {
        s.Swap(generation(g))
    }
    close(stop)
    wg.Wait()
    assert.Zero(t, mixed.Load())
    assert.Equal(t, "500", s.Load().Zones()[0].Name)
}
