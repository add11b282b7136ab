package cachekit

import (
	"testing"
	"time"
)

func TestPersistent_SetGet(t *testing.T) {
	p, err := NewPersistent(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewPersistent: %v", err)
	}
	if err := p.Set("key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := p.Get("key")
	if !ok || string(got) != "value" {
		t.Errorf("got %q,%v want value,true", got, ok)
	}
}

func TestPersistent_Expiry(t *testing.T) {
	p, err := NewPersistent(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewPersistent: %v", err)
	}
	if err := p.Set("key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, ok := p.Get("key"); ok {
		t.Error("expected expired entry to be absent")
	}
}

func TestPersistent_Invalidate(t *testing.T) {
	p, err := NewPersistent(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewPersistent: %v", err)
	}
	_ = p.Set("key", []byte("value"), 0)
	if err := p.Invalidate("key"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := p.Get("key"); ok {
		t.Error("expected key to be gone")
	}
}

func TestPersistent_Clear(t *testing.T) {
	p, err := NewPersistent(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewPersistent: %v", err)
	}
	_ = p.Set("a", []byte("1"), 0)
	_ = p.Set("b", []byte("2"), 0)
	if err := p.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := p.Get("a"); ok {
		t.Error("expected a to be cleared")
	}
	if _, ok := p.Get("b"); ok {
		t.Error("expected b to be cleared")
	}
}
