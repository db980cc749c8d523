package model

import (
	"encoding/json"
	"sort"
)

// AddressSet is a set of addresses attributed to makers. It grows
// monotonically while the linkage engine seeds it and is read-only
// afterwards.
//
// The zero value is not usable; call NewAddressSet.
type AddressSet map[string]struct{}

// NewAddressSet creates an AddressSet containing the given addresses.
func NewAddressSet(addrs ...string) AddressSet {
	s := make(AddressSet, len(addrs))
	for _, a := range addrs {
		s.Add(a)
	}
	return s
}

// Add inserts an address into the set. Empty addresses are ignored.
func (s AddressSet) Add(addr string) {
	if addr == "" {
		return
	}
	s[addr] = struct{}{}
}

// Contains reports whether the address is in the set.
func (s AddressSet) Contains(addr string) bool {
	_, ok := s[addr]
	return ok
}

// Intersects reports whether any of the given addresses is in the set.
func (s AddressSet) Intersects(addrs []string) bool {
	for _, a := range addrs {
		if s.Contains(a) {
			return true
		}
	}
	return false
}

// Union adds every address of other into s.
func (s AddressSet) Union(other AddressSet) {
	for a := range other {
		s[a] = struct{}{}
	}
}

// Len returns the number of addresses in the set.
func (s AddressSet) Len() int {
	return len(s)
}

// Sorted returns the addresses in lexicographic order. Serialization and
// reporting go through this so identical sets always render identically.
func (s AddressSet) Sorted() []string {
	addrs := make([]string, 0, len(s))
	for a := range s {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	return addrs
}

// MarshalJSON serializes the set as a sorted JSON array.
func (s AddressSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON restores the set from a JSON array.
func (s *AddressSet) UnmarshalJSON(data []byte) error {
	var addrs []string
	if err := json.Unmarshal(data, &addrs); err != nil {
		return err
	}
	*s = NewAddressSet(addrs...)
	return nil
}
