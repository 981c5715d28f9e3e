package validators

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LenientInt decodes quantities the way form inputs send them: JSON numbers,
// numeric strings and null. Anything unparseable becomes 0 and fractions are
// truncated.
type LenientInt int

func (n *LenientInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	switch {
	case f > math.MaxInt32:
		f = math.MaxInt32
	case f < math.MinInt32:
		f = math.MinInt32
	}
	*n = LenientInt(int(f))
	return nil
}

func (n LenientInt) Int() int {
	return int(n)
}
