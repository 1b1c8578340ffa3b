package database

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Vector adapts a float64 slice to pgvector's wire representation. The
// driver exchanges VECTOR columns as the text literal "[0.1,0.2,0.3]"
// regardless of the declared column width.
type Vector []float64

// Scan implements sql.Scanner for vector literals arriving as string or
// []byte. A NULL column scans to a nil Vector.
func (v *Vector) Scan(value any) error {
	var raw string
	switch src := value.(type) {
	case nil:
		*v = nil
		return nil
	case string:
		raw = src
	case []byte:
		raw = string(src)
	default:
		return fmt.Errorf("unsupported vector source %T", value)
	}

	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '[' || raw[len(raw)-1] != ']' {
		return fmt.Errorf("malformed vector literal %q", raw)
	}
	body := raw[1 : len(raw)-1]
	if strings.TrimSpace(body) == "" {
		*v = Vector{}
		return nil
	}

	out := make(Vector, 0, strings.Count(body, ",")+1)
	for body != "" {
		elem, rest, _ := strings.Cut(body, ",")
		f, err := strconv.ParseFloat(strings.TrimSpace(elem), 64)
		if err != nil {
			return fmt.Errorf("vector element %d: %w", len(out), err)
		}
		out = append(out, f)
		body = rest
	}
	*v = out
	return nil
}

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	return v.String(), nil
}

// String renders the pgvector text literal.
func (v Vector) String() string {
	buf := make([]byte, 0, len(v)*10+2)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, f, 'f', -1, 64)
	}
	buf = append(buf, ']')
	return string(buf)
}
