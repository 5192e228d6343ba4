package game

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistry_PutAndGet(t *testing.T) {
	reg := NewRegistry()
	battle := NewCardBattle()

	reg.Put("ROOM01", battle)

	got, exists := reg.Get("ROOM01")
	if !exists {
		t.Fatal("Get should find the stored battle")
	}
	if got != battle {
		t.Error("Get should return the same battle instance")
	}

	if _, exists := reg.Get("NOSUCH"); exists {
		t.Error("Get should not find an unregistered room")
	}
}

func TestRegistry_PutReplaces(t *testing.T) {
	reg := NewRegistry()
	first := NewCardBattle()
	second := NewCardBattle()

	reg.Put("ROOM01", first)
	reg.Put("ROOM01", second)

	got, _ := reg.Get("ROOM01")
	if got != second {
		t.Error("Put should silently replace the prior entry")
	}
	if reg.Count() != 1 {
		t.Errorf("Expected 1 battle, got %d", reg.Count())
	}
}

func TestRegistry_Remove(t *testing.T) {
	reg := NewRegistry()
	reg.Put("ROOM01", NewCardBattle())

	reg.Remove("ROOM01")

	if _, exists := reg.Get("ROOM01"); exists {
		t.Error("Get should not find a removed battle")
	}
	if reg.Count() != 0 {
		t.Errorf("Expected 0 battles, got %d", reg.Count())
	}

	// Removing an absent room is harmless.
	reg.Remove("ROOM01")
}

func TestRegistry_ConcurrentPut(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			reg.Put(fmt.Sprintf("ROOM%02d", n), NewCardBattle())
		}(i)
	}
	wg.Wait()

	if reg.Count() != 50 {
		t.Errorf("Expected 50 battles, got %d", reg.Count())
	}
}
