package memory

import (
	"context"
	"testing"
)

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore()

	if _, ok, err := s.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if v, ok, _ := s.Get(ctx, "token"); !ok || v != "abc" {
		t.Fatalf("unexpected value %q (ok=%v)", v, ok)
	}
	if err := s.Delete(ctx, "token", "user"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "token"); ok {
		t.Fatalf("key survived delete")
	}
}
