package fixture

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashFields returns a copy of value with each named field replaced by its bcrypt hash.
func hashFields(value map[string]any, fields []string, cost int) (map[string]any, error) {
	out := make(map[string]any, len(value))
	for k, v := range value {
		out[k] = v
	}
	for _, field := range fields {
		raw, ok := out[field]
		if !ok {
			return nil, fmt.Errorf("hash field %q missing", field)
		}
		plain, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("hash field %q is %T, want string", field, raw)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
		if err != nil {
			return nil, fmt.Errorf("hash field %q: %w", field, err)
		}
		out[field] = string(hashed)
	}
	return out, nil
}
