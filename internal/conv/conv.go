package conv

import (
	"encoding/json"
	"strconv"
)

// AsInt coerces common JSON-decoded numeric representations into an int.
// Unrecognized values yield zero.
func AsInt(value interface{}) int {
	switch actual := value.(type) {
	case int:
		return actual
	case int32:
		return int(actual)
	case int64:
		return int(actual)
	case uint64:
		return int(actual)
	case float32:
		return int(actual)
	case float64:
		return int(actual)
	case json.Number:
		ret, _ := actual.Int64()
		return int(ret)
	case string:
		ret, _ := strconv.Atoi(actual)
		return ret
	case *int:
		if actual != nil {
			return *actual
		}
	}
	return 0
}
