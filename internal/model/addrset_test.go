package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

// TestAddressSet tests set operations.
func TestAddressSet(t *testing.T) {
	t.Parallel()

	t.Run("add and contains", func(t *testing.T) {
		t.Parallel()

		s := NewAddressSet("a", "b")
		if !s.Contains("a") || !s.Contains("b") {
			t.Error("expected constructor addresses to be present")
		}
		if s.Contains("c") {
			t.Error("unexpected address present")
		}
		s.Add("c")
		if !s.Contains("c") {
			t.Error("expected added address to be present")
		}
	})

	t.Run("ignores empty addresses", func(t *testing.T) {
		t.Parallel()

		s := NewAddressSet()
		s.Add("")
		if s.Len() != 0 {
			t.Errorf("expected empty set, got %d entries", s.Len())
		}
	})

	t.Run("intersects", func(t *testing.T) {
		t.Parallel()

		s := NewAddressSet("a", "b")
		if !s.Intersects([]string{"x", "b"}) {
			t.Error("expected intersection")
		}
		if s.Intersects([]string{"x", "y"}) {
			t.Error("unexpected intersection")
		}
		if s.Intersects(nil) {
			t.Error("unexpected intersection with nil")
		}
	})

	t.Run("union", func(t *testing.T) {
		t.Parallel()

		s := NewAddressSet("a")
		s.Union(NewAddressSet("b", "c"))
		if s.Len() != 3 {
			t.Errorf("expected 3 addresses, got %d", s.Len())
		}
	})

	t.Run("sorted is deterministic", func(t *testing.T) {
		t.Parallel()

		s := NewAddressSet("c", "a", "b")
		want := []string{"a", "b", "c"}
		if got := s.Sorted(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

// TestAddressSetJSON tests JSON round-tripping as a sorted array.
func TestAddressSetJSON(t *testing.T) {
	t.Parallel()

	t.Run("marshals sorted", func(t *testing.T) {
		t.Parallel()

		s := NewAddressSet("z", "a", "m")
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `["a","m","z"]` {
			t.Errorf("unexpected JSON: %s", data)
		}
	})

	t.Run("round trips", func(t *testing.T) {
		t.Parallel()

		s := NewAddressSet("x", "y")
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var restored AddressSet
		if err := json.Unmarshal(data, &restored); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(restored, s) {
			t.Errorf("expected %v, got %v", s, restored)
		}
	})
}
