package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Quantity accepts either a JSON number or a JSON string, since clients send
// both "2" and 2 for ingredient amounts
type Quantity struct {
	Value string
}

// QuantityOf wraps an integer count
func QuantityOf(n int) Quantity {
	return Quantity{Value: strconv.Itoa(n)}
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		q.Value = ""
		return nil
	}

	// Try to unmarshal as number first
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		q.Value = strconv.FormatFloat(num, 'f', -1, 64)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		q.Value = strings.TrimSpace(str)
		return nil
	}

	return fmt.Errorf("invalid quantity format")
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Value)
}

func (q Quantity) String() string {
	return q.Value
}
