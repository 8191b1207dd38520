// Package cell converts a [left,right] byte range within a tokenizer.Buffer
// into a typed value: int64, float64, bool, or string. Extractors never
// allocate beyond the string case, and never scan bytes outside their
// assigned range. The int64, float64 and bool extractors fold in the
// configured NA-string set; String instead honors a quoted empty field's
// exemption from missingness and leaves NA matching to its caller.
package cell

import (
	"bytes"
	"math"
	"sort"
	"strconv"

	"github.com/shapestone/tabl/internal/classify"
)

// Set is a small collection of byte literals matched by exact length-then-
// content comparison: used for na_set, true_set, and false_set.
type Set struct {
	items [][]byte
}

// NewSet builds a Set from string literals, sorted by length then
// lexicographically. Match itself does not depend on the ordering.
func NewSet(literals ...string) Set {
	items := make([][]byte, len(literals))
	for i, s := range literals {
		items[i] = []byte(s)
	}
	sort.Slice(items, func(i, j int) bool {
		if len(items[i]) != len(items[j]) {
			return len(items[i]) < len(items[j])
		}
		return bytes.Compare(items[i], items[j]) < 0
	})
	return Set{items: items}
}

// Match reports whether b exactly matches a member of the set.
func (s Set) Match(b []byte) bool {
	for _, it := range s.items {
		if len(it) == len(b) && bytes.Equal(it, b) {
			return true
		}
	}
	return false
}

// Empty reports whether [left,right] denotes an empty field per the
// bounds convention: left > right.
func Empty(left, right int) bool {
	return left > right
}

// Trim returns the [left,right] range with leading/trailing ASCII
// whitespace (per classify.IsASCIISpace) removed. Used when ignorepadding
// is set and the field was not quoted.
func Trim(data []byte, left, right int) (int, int) {
	for left <= right && classify.IsASCIISpace(data[left]) {
		left++
	}
	for right >= left && classify.IsASCIISpace(data[right]) {
		right--
	}
	return left, right
}

// String extracts bytes[left..right] as an owned UTF-8 string. Per the
// empty-cell rule, an empty unquoted cell is reported missing while an
// empty quoted cell ("") is reported present but empty. na_set is not
// consulted here; internal/column applies it to non-empty string cells.
func String(data []byte, left, right int, wasQuoted bool) (value string, ok bool, missing bool) {
	if Empty(left, right) {
		return "", true, !wasQuoted
	}
	return string(data[left : right+1]), true, false
}

// Int64 extracts bytes[left..right] as a signed 64-bit integer. An empty
// cell or a cell matching naSet is a successful missing read of the zero
// value. Anything else that is not an optionally-signed run of ASCII
// digits, or a value outside the int64 range, reports ok=false. Overflow
// is treated as a parse failure, not silent wraparound, so the column
// materializer's promotion ladder demotes the column to float exactly as
// it does for any other non-integer cell.
func Int64(data []byte, left, right int, naSet Set) (value int64, ok bool, missing bool) {
	if Empty(left, right) {
		return 0, true, true
	}
	if naSet.Match(data[left : right+1]) {
		return 0, true, true
	}
	v, ok := parseInt64(data, left, right)
	return v, ok, false
}

// parseInt64 accumulates a digit magnitude left-to-right (Horner's method)
// as an unsigned value, then applies the sign at the end. The magnitude is
// checked against maxMag, the largest magnitude the sign in play can
// represent: 2^63 for a negative literal, 2^63-1 for a positive one, since
// int64's negative range holds one more magnitude than its positive range.
// Comparing against the sign-appropriate bound (rather than always against
// math.MaxInt64 and negating afterward) is what lets the single valid
// literal "-9223372036854775808" round-trip instead of being rejected as
// an overflow and wrongly demoted to float64.
func parseInt64(data []byte, left, right int) (int64, bool) {
	i := left
	neg := false
	switch data[i] {
	case '-':
		neg = true
		i++
	case '+':
		i++
	}
	if i > right {
		return 0, false
	}
	maxMag := uint64(math.MaxInt64)
	if neg {
		maxMag++
	}
	var acc uint64
	for ; i <= right; i++ {
		c := data[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if acc > (maxMag-d)/10 {
			return 0, false
		}
		acc = acc*10 + d
	}
	if neg {
		return -int64(acc), true
	}
	return int64(acc), true
}

// Float64 extracts bytes[left..right] as a float64, delegating to the
// standard library's locale-independent float grammar. An empty cell or a
// cell matching naSet is a successful missing read of 0.0.
func Float64(data []byte, left, right int, naSet Set) (value float64, ok bool, missing bool) {
	if Empty(left, right) {
		return 0, true, true
	}
	if naSet.Match(data[left : right+1]) {
		return 0, true, true
	}
	f, err := strconv.ParseFloat(string(data[left:right+1]), 64)
	if err != nil {
		return 0, false, false
	}
	return f, true, false
}

// Bool matches bytes[left..right] against trueSet then falseSet. An empty
// cell or a cell matching naSet is a successful missing read of false.
func Bool(data []byte, left, right int, naSet, trueSet, falseSet Set) (value bool, ok bool, missing bool) {
	if Empty(left, right) {
		return false, true, true
	}
	span := data[left : right+1]
	if naSet.Match(span) {
		return false, true, true
	}
	if trueSet.Match(span) {
		return true, true, false
	}
	if falseSet.Match(span) {
		return false, true, false
	}
	return false, false, false
}

// DefaultNASet is the default nastrings option: {"", "NA"}.
func DefaultNASet() Set { return NewSet("", "NA") }

// DefaultTrueSet is the default truestrings option.
func DefaultTrueSet() Set { return NewSet("T", "t", "TRUE", "true") }

// DefaultFalseSet is the default falsestrings option.
func DefaultFalseSet() Set { return NewSet("F", "f", "FALSE", "false") }
