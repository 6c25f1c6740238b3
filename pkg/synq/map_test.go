package synq

import (
	"sync"
	"testing"
)

func TestMap_StoreLoad(t *testing.T) {
	cmap := NewMap[string, int]()
	cmap.Store("one", 1)
	if value, ok := cmap.Load("one"); !ok || value != 1 {
		t.Errorf("expected 1, got %d", value)
	}
}

func TestMap_LoadOrInsert(t *testing.T) {
	cmap := NewMap[string, int]()

	if v, loaded := cmap.LoadOrInsert("db", 1); loaded || v != 1 {
		t.Errorf("expected fresh insert of 1, got %d (loaded=%v)", v, loaded)
	}
	if v, loaded := cmap.LoadOrInsert("db", 2); !loaded || v != 1 {
		t.Errorf("expected existing 1, got %d (loaded=%v)", v, loaded)
	}
}

func TestMap_Delete(t *testing.T) {
	cmap := NewMap[string, int]()
	cmap.Store("one", 1)
	cmap.Delete("one")
	if _, ok := cmap.Load("one"); ok {
		t.Errorf("expected 'one' to be deleted")
	}
}

func TestMap_Reset(t *testing.T) {
	cmap := NewMap[string, int]()
	cmap.Store("one", 1)
	cmap.Reset()
	if cmap.Len() != 0 {
		t.Errorf("expected empty map after reset, got %d entries", cmap.Len())
	}
}

func TestMap_Concurrency(t *testing.T) {
	cmap := NewMap[int, int]()
	wg := sync.WaitGroup{}
	wg.Add(100)

	for i := range 50 {
		go func(i int) {
			defer wg.Done()
			cmap.Store(i, i*2)
		}(i)
		go func(i int) {
			defer wg.Done()
			if value, ok := cmap.Load(i); ok && value != i*2 {
				t.Errorf("expected %d, got %d", i*2, value)
			}
		}(i)
	}

	wg.Wait()
}
