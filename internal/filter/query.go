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

package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magpierre/fabview/datatable"
)

// CompOp is a comparison operator in a search query.
type CompOp int

const (
	// OpEqual (=) matches the formatted value, ignoring case.
	OpEqual CompOp = iota
	// OpNotEqual (!=) is the negation of OpEqual.
	OpNotEqual
	// OpGreater (>) compares numerically when both sides are numbers.
	OpGreater
	// OpLess (<) compares numerically when both sides are numbers.
	OpLess
	// OpGreaterEqual (>=) compares numerically when both sides are numbers.
	OpGreaterEqual
	// OpLessEqual (<=) compares numerically when both sides are numbers.
	OpLessEqual
	// OpContains (~) matches a case-insensitive substring.
	OpContains
)

var opSymbols = []struct {
	op     CompOp
	symbol string
}{
	// longest first so ">=" is not read as ">"
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

// String returns the operator as it is written in a query.
func (op CompOp) String() string {
	for _, s := range opSymbols {
		if s.op == op {
			return s.symbol
		}
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Expression is a single comparison. An empty Column searches every column.
type Expression struct {
	Column   string
	Operator CompOp
	Value    string
}

// Query is a parsed search expression, evaluated left to right.
// It implements datatable.Filter.
type Query struct {
	Expressions []Expression
	LogicOps    []LogicOp // Operations between expressions
}

// QueryParser parses search expressions such as
// `status = APPROVED AND amount > 1000` against a known set of columns.
type QueryParser struct {
	columns map[string]string // lower-cased name or header -> column id
}

// NewQueryParser creates a parser. names maps every accepted spelling of a
// column (id, header) to the column id.
func NewQueryParser(names map[string]string) *QueryParser {
	columns := make(map[string]string, len(names))
	for name, id := range names {
		columns[strings.ToLower(name)] = id
	}
	return &QueryParser{columns: columns}
}

// Parse parses a query string. An empty string yields a nil query.
func (qp *QueryParser) Parse(queryStr string) (*Query, error) {
	if strings.TrimSpace(queryStr) == "" {
		return nil, nil
	}

	query := &Query{}
	for _, part := range splitByLogicOps(queryStr) {
		if part.isOperator {
			if part.text == "AND" {
				query.LogicOps = append(query.LogicOps, LogicAND)
			} else {
				query.LogicOps = append(query.LogicOps, LogicOR)
			}
			continue
		}
		expr, err := qp.parseExpression(part.text)
		if err != nil {
			return nil, err
		}
		query.Expressions = append(query.Expressions, expr)
	}

	if len(query.Expressions) == 0 || len(query.LogicOps) != len(query.Expressions)-1 {
		return nil, fmt.Errorf("%w: mismatched expressions and operators", datatable.ErrInvalidFilter)
	}
	return query, nil
}

type queryPart struct {
	text       string
	isOperator bool
}

// splitByLogicOps splits query by AND/OR (whole words, any case) keeping the operators.
func splitByLogicOps(query string) []queryPart {
	var parts []queryPart
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, queryPart{text: s})
		}
		current.Reset()
	}

	for i := 0; i < len(query); {
		matched := false
		for _, word := range []string{"AND", "OR"} {
			end := i + len(word)
			if end > len(query) || strings.ToUpper(query[i:end]) != word {
				continue
			}
			if (i == 0 || isWhitespace(query[i-1])) && (end == len(query) || isWhitespace(query[end])) {
				flush()
				parts = append(parts, queryPart{text: word, isOperator: true})
				i = end
				matched = true
				break
			}
		}
		if !matched {
			current.WriteByte(query[i])
			i++
		}
	}
	flush()
	return parts
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// parseExpression parses a single expression like "column = value".
// Text without an operator is a contains search over every column.
func (qp *QueryParser) parseExpression(exprStr string) (Expression, error) {
	for _, opInfo := range opSymbols {
		idx := strings.Index(exprStr, opInfo.symbol)
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(exprStr[:idx])
		value := strings.Trim(strings.TrimSpace(exprStr[idx+len(opInfo.symbol):]), "\"'")

		id, ok := qp.columns[strings.ToLower(name)]
		if !ok {
			return Expression{}, fmt.Errorf("%w: unknown column %q", datatable.ErrColumnNotFound, name)
		}
		return Expression{Column: id, Operator: opInfo.op, Value: value}, nil
	}

	return Expression{Operator: OpContains, Value: exprStr}, nil
}

// Evaluate implements datatable.Filter.
func (q *Query) Evaluate(row datatable.Row) (bool, error) {
	if q == nil || len(q.Expressions) == 0 {
		return true, nil
	}

	result := evaluateExpression(q.Expressions[0], row)
	for i, op := range q.LogicOps {
		next := evaluateExpression(q.Expressions[i+1], row)
		switch op {
		case LogicAND:
			result = result && next
		case LogicOR:
			result = result || next
		}
	}
	return result, nil
}

// Description implements datatable.Filter.
func (q *Query) Description() string {
	if q == nil || len(q.Expressions) == 0 {
		return "empty query"
	}
	var b strings.Builder
	for i, e := range q.Expressions {
		if i > 0 {
			fmt.Fprintf(&b, " %s ", q.LogicOps[i-1])
		}
		if e.Column == "" {
			fmt.Fprintf(&b, "any ~ %q", e.Value)
			continue
		}
		fmt.Fprintf(&b, "%s %s %q", e.Column, e.Operator, e.Value)
	}
	return b.String()
}

func evaluateExpression(expr Expression, row datatable.Row) bool {
	if expr.Column == "" {
		ok, _ := Global{Needle: expr.Value}.Evaluate(row)
		return ok
	}

	v, ok := row.Value(expr.Column)
	if !ok {
		return false
	}
	cell := v.Formatted

	switch expr.Operator {
	case OpEqual:
		return strings.EqualFold(cell, expr.Value)
	case OpNotEqual:
		return !strings.EqualFold(cell, expr.Value)
	case OpContains:
		return containsFold(cell, expr.Value)
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		if v.IsNull {
			return false
		}
		return compareOrdered(cell, expr.Value, expr.Operator)
	}
	return false
}

// compareOrdered compares numerically when both sides parse as numbers and
// falls back to a case-insensitive string comparison otherwise.
func compareOrdered(cell, want string, op CompOp) bool {
	var cmp int
	x, err1 := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(want), 64)
	if err1 == nil && err2 == nil {
		cmp = compareFloat(x, y)
	} else {
		cmp = strings.Compare(strings.ToLower(cell), strings.ToLower(want))
	}

	switch op {
	case OpGreater:
		return cmp > 0
	case OpLess:
		return cmp < 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLessEqual:
		return cmp <= 0
	}
	return false
}

func compareFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
