package accounts

import (
	"fmt"
	"os"
	"sort"
)

// Map resolves bank account numbers to QIF display names.
type Map struct {
	names map[string]string
}

// NewMap creates a Map from number -> name pairs. The input is copied.
func NewMap(names map[string]string) *Map {
	m := &Map{names: make(map[string]string, len(names))}
	for k, v := range names {
		m.names[k] = v
	}
	return m
}

// LoadCSV reads an account map CSV file from disk.
func LoadCSV(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening account map: %w", err)
	}
	defer f.Close()

	m, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading account map %s: %w", path, err)
	}
	return m, nil
}

// SaveCSV writes the map to path.
func (m *Map) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating account map file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, m); err != nil {
		return fmt.Errorf("writing account map: %w", err)
	}
	return nil
}

// Add registers a mapping. Re-adding a number with a different name fails.
func (m *Map) Add(number, name string) error {
	if existing, ok := m.names[number]; ok && existing != name {
		return fmt.Errorf("account %s mapped to both %q and %q", number, existing, name)
	}
	m.names[number] = name
	return nil
}

// Merge adds every mapping from other.
func (m *Map) Merge(other *Map) error {
	for _, number := range other.Numbers() {
		if err := m.Add(number, other.names[number]); err != nil {
			return err
		}
	}
	return nil
}

// DisplayName returns the name for an account number.
func (m *Map) DisplayName(number string) (string, bool) {
	name, ok := m.names[number]
	return name, ok
}

// Numbers returns all account numbers, sorted.
func (m *Map) Numbers() []string {
	nums := make([]string, 0, len(m.names))
	for k := range m.names {
		nums = append(nums, k)
	}
	sort.Strings(nums)
	return nums
}

// Len returns the number of mappings.
func (m *Map) Len() int {
	return len(m.names)
}
