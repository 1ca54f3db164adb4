package api

import (
	"fmt"
	"net/url"
	"strings"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value interface{}
}

// Params are the query parameters of a request.
// In contrast to url.Values they keep their insertion order, which is relevant because the encoded query is part of the cache key.
type Params []Param

// Add returns the params with the given key-value pair appended.
// The value is formatted with fmt.Sprint.
func (p Params) Add(key string, value interface{}) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode percent-encodes the params as "key=value" pairs joined by "&", in insertion order.
// Spaces are encoded as "%20", not "+".
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(p))
	for _, param := range p {
		pairs = append(pairs, escape(param.Key)+"="+escape(fmt.Sprint(param.Value)))
	}
	return strings.Join(pairs, "&")
}

func escape(s string) string {
	// url.QueryEscape turns spaces into "+" and literal "+" into "%2B", so replacing afterwards is safe.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
