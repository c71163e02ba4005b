// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datatable

import (
	"cmp"
	"math"
	"strings"
	"time"
)

// Kinds in sort order. Values of different kinds never compare by content, so
// a column mixing numbers and text keeps every number before every string.
const (
	rankNumber = iota
	rankBool
	rankTime
	rankText
)

// number is an exact numeric value: exactly one of the three forms is used.
type number struct {
	kind int // 0 signed, 1 unsigned, 2 float
	i    int64
	u    uint64
	f    float64
}

// Compare orders two values ascending. It returns a negative number when a sorts
// before b, zero when they are equal and a positive number otherwise.
//
// Null values sort after every non-null value. Callers that sort descending must
// keep that rule themselves by comparing nulls before negating the result.
// Non-null values are ranked by kind first (numbers, bools, times, then
// everything else by its display text) and compared within a kind, which keeps
// the order total for columns that mix kinds.
func Compare(a, b Value) int {
	switch {
	case a.IsNull && b.IsNull:
		return 0
	case a.IsNull:
		return 1
	case b.IsNull:
		return -1
	}

	ra, rb := rank(a.Raw), rank(b.Raw)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankNumber:
		x, _ := toNumber(a.Raw)
		y, _ := toNumber(b.Raw)
		return compareNumber(x, y)
	case rankBool:
		return compareBool(a.Raw.(bool), b.Raw.(bool))
	case rankTime:
		return a.Raw.(time.Time).Compare(b.Raw.(time.Time))
	}
	return strings.Compare(a.Formatted, b.Formatted)
}

func rank(raw interface{}) int {
	if _, ok := toNumber(raw); ok {
		return rankNumber
	}
	switch raw.(type) {
	case bool:
		return rankBool
	case time.Time:
		return rankTime
	}
	return rankText
}

func toNumber(raw interface{}) (number, bool) {
	switch v := raw.(type) {
	case int:
		return number{i: int64(v)}, true
	case int8:
		return number{i: int64(v)}, true
	case int16:
		return number{i: int64(v)}, true
	case int32:
		return number{i: int64(v)}, true
	case int64:
		return number{i: v}, true
	case uint:
		return number{kind: 1, u: uint64(v)}, true
	case uint8:
		return number{kind: 1, u: uint64(v)}, true
	case uint16:
		return number{kind: 1, u: uint64(v)}, true
	case uint32:
		return number{kind: 1, u: uint64(v)}, true
	case uint64:
		return number{kind: 1, u: v}, true
	case float32:
		return number{kind: 2, f: float64(v)}, true
	case float64:
		return number{kind: 2, f: v}, true
	}
	return number{}, false
}

// compareNumber compares without converting integers to float64, so int64
// and uint64 values above 2^53 keep their order.
func compareNumber(x, y number) int {
	switch {
	case x.kind == 0 && y.kind == 0:
		return cmp.Compare(x.i, y.i)
	case x.kind == 1 && y.kind == 1:
		return cmp.Compare(x.u, y.u)
	case x.kind == 2 && y.kind == 2:
		return cmp.Compare(x.f, y.f)
	case x.kind == 2:
		return compareFloatInt(x.f, y)
	case y.kind == 2:
		return -compareFloatInt(y.f, x)
	case x.kind == 0: // signed vs unsigned
		if x.i < 0 {
			return -1
		}
		return cmp.Compare(uint64(x.i), y.u)
	default:
		if y.i < 0 {
			return 1
		}
		return cmp.Compare(x.u, uint64(y.i))
	}
}

// compareFloatInt compares a float with a signed or unsigned integer exactly.
func compareFloatInt(f float64, n number) int {
	t := math.Trunc(f)
	frac := cmp.Compare(f-t, 0)
	if n.kind == 0 {
		switch {
		case t < -(1 << 63):
			return -1
		case t >= 1<<63:
			return 1
		}
		if c := cmp.Compare(int64(t), n.i); c != 0 {
			return c
		}
		return frac
	}
	switch {
	case t < 0:
		return -1
	case t >= 1<<64:
		return 1
	}
	if c := cmp.Compare(uint64(t), n.u); c != 0 {
		return c
	}
	return frac
}

func compareBool(x, y bool) int {
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}
