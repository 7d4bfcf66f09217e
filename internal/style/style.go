// Package style holds the fixed comedian styles and caption length buckets.
//
// Selection is a pure index lookup: the same index always yields the same
// style or bucket.
package style

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed styles.json
var stylesJSON []byte

// ComedianStyle describes a delivery pattern and its target line length.
type ComedianStyle struct {
	Name      string `json:"name"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
	Delivery  string `json:"delivery"` // markdown
}

// LengthBucket is an inclusive caption length range.
type LengthBucket struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

type table struct {
	Styles  []ComedianStyle `json:"styles"`
	Buckets []LengthBucket  `json:"buckets"`
}

var data = mustLoad(stylesJSON)

func mustLoad(raw []byte) table {
	var t table
	if err := json.Unmarshal(raw, &t); err != nil {
		panic(fmt.Sprintf("style: embedded styles.json: %v", err))
	}
	if len(t.Styles) == 0 || len(t.Buckets) == 0 {
		panic("style: embedded styles.json has no styles or buckets")
	}
	return t
}

// Pick returns the style at index modulo the number of styles.
func Pick(index int) ComedianStyle {
	return data.Styles[wrap(index, len(data.Styles))]
}

// Bucket returns the length bucket at index modulo the number of buckets.
func Bucket(index int) LengthBucket {
	return data.Buckets[wrap(index, len(data.Buckets))]
}

// BucketFor returns the first bucket whose range contains length.
func BucketFor(length int) (LengthBucket, bool) {
	for _, b := range data.Buckets {
		if length >= b.Min && length <= b.Max {
			return b, true
		}
	}
	return LengthBucket{}, false
}

// Styles returns a copy of all styles.
func Styles() []ComedianStyle {
	return append([]ComedianStyle(nil), data.Styles...)
}

// Buckets returns a copy of all length buckets.
func Buckets() []LengthBucket {
	return append([]LengthBucket(nil), data.Buckets...)
}

func wrap(index, n int) int {
	i := index % n
	if i < 0 {
		i += n
	}
	return i
}
