package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/validation"
)

// ParsePatch builds a patch from field=value assignments. Field names and
// value types come from the JSON form of template: numeric fields take
// integers, all other fields take the raw string.
func ParsePatch(assignments []string, template any) (models.Patch, error) {
	fields, err := models.ToFields(template)
	if err != nil {
		return nil, err
	}

	patch := make(models.Patch, len(assignments))
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected field=value", a)
		}

		current, known := fields[name]
		if !known {
			return nil, fmt.Errorf("unknown field %q", name)
		}

		switch current.(type) {
		case float64:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("field %q takes a number, got %q", name, value)
			}
			patch[name] = n
		default:
			patch[name] = value
		}
	}

	if err := validation.ValidatePatch(patch); err != nil {
		return nil, err
	}
	return patch, nil
}
