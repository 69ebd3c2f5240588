package catalog

import (
	"errors"
	"fmt"
)

// ErrMalformed is returned when a catalog source cannot be used at all.
// It is fatal at startup, unlike a single pattern failing to compile.
var ErrMalformed = errors.New("malformed catalog")

// validateRecord checks required fields of a raw record.
func validateRecord(i int, yp yamlPattern) error {
	if yp.Name == "" {
		return fmt.Errorf("%w: record %d: name is required", ErrMalformed, i)
	}
	if yp.Regex == "" {
		return fmt.Errorf("%w: record %d (%s): regex is required", ErrMalformed, i, yp.Name)
	}
	if yp.Rarity == nil {
		return fmt.Errorf("%w: record %d (%s): rarity is required", ErrMalformed, i, yp.Name)
	}
	if *yp.Rarity < 0 || *yp.Rarity > 1 {
		return fmt.Errorf("%w: record %d (%s): rarity %v outside [0,1]", ErrMalformed, i, yp.Name, *yp.Rarity)
	}
	return nil
}
