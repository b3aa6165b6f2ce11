package sanctoral

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed tlh.yaml
var defaultCalendar []byte

// File is the on-disk layout of a sanctoral calendar.
type File struct {
	Days []Day `yaml:"days"`
}

// LoadYAML decodes and validates a sanctoral calendar. Entries without an
// ID get a stable one derived from their month, day and name.
func LoadYAML(r io.Reader) ([]Day, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode sanctoral yaml: %w", err)
	}

	for i := range f.Days {
		d := &f.Days[i]
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i+1, d.Name, err)
		}
		if d.ID == "" {
			d.ID = StableID(*d)
		}
	}
	return f.Days, nil
}

// StableID derives a deterministic UUID for an entry so that reseeding the
// same calendar yields the same identifiers.
func StableID(d Day) string {
	key := fmt.Sprintf("churchyear:sanctoral:%02d-%02d:%s", d.Month, d.Day, d.Name)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Default returns the built-in TLH sanctorale.
func Default() ([]Day, error) {
	return LoadYAML(bytes.NewReader(defaultCalendar))
}

// DefaultLookup returns a Static lookup over the built-in calendar.
func DefaultLookup() (*Static, error) {
	days, err := Default()
	if err != nil {
		return nil, err
	}
	return NewStatic(days), nil
}
