package session

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// Bind decodes the session's data map into out, a pointer to a struct.
// Fields map by `mapstructure` tag, falling back to the field name. Stores
// that persist through JSON hand numbers back as float64; Bind converts
// them to the field's type.
func Bind(sess *domain.Session, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("bind session data: %w", err)
	}
	if err := dec.Decode(sess.Data); err != nil {
		return fmt.Errorf("bind session data: %w", err)
	}
	return nil
}

// Write merges the exported fields of v into the session's data map,
// overwriting existing keys. It is the inverse of Bind for struct-shaped
// session data.
func Write(sess *domain.Session, v any) error {
	fields := make(map[string]any)
	if err := mapstructure.Decode(v, &fields); err != nil {
		return fmt.Errorf("write session data: %w", err)
	}
	for k, val := range fields {
		sess.Data[k] = val
	}
	return nil
}
