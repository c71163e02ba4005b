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

// Package script compiles custom column predicates from Go source at runtime.
//
// A predicate is the body of
//
//	func match(value interface{}, filter interface{}) bool
//
// where value is the column's resolved value and filter the column's filter
// value. A body without a return statement is read as a boolean expression:
//
//	num(value) >= num(filter)
//	strings.HasPrefix(str(value), str(filter))
//
// The helpers num and str and the packages fmt, math, strconv, strings and
// time are in scope.
package script

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
)

const source = `package predicate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	_ = math.Abs
	_ = time.Now
)

func num(v interface{}) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	}
	return 0
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func Match(value interface{}, filter interface{}) bool {
%s
}
`

// Predicate is a compiled predicate.
type Predicate struct {
	src string

	mu    sync.Mutex
	match func(interface{}, interface{}) bool
}

// Compile compiles a predicate body or expression.
func Compile(body string) (*Predicate, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty predicate", datatable.ErrScriptCompile)
	}

	i := interp.New(interp.Options{Stdout: io.Discard, Stderr: io.Discard})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: loading stdlib: %v", datatable.ErrScriptCompile, err)
	}

	if _, err := i.Eval(fmt.Sprintf(source, wrapBody(body))); err != nil {
		return nil, fmt.Errorf("%w: %v", datatable.ErrScriptCompile, err)
	}
	v, err := i.Eval("predicate.Match")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", datatable.ErrScriptCompile, err)
	}
	match, ok := v.Interface().(func(interface{}, interface{}) bool)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected predicate type %s", datatable.ErrScriptCompile, v.Type())
	}
	return &Predicate{src: body, match: match}, nil
}

// MustCompile is like Compile but panics if the body does not compile.
func MustCompile(body string) *Predicate {
	p, err := Compile(body)
	if err != nil {
		panic(err)
	}
	return p
}

var returnStmt = regexp.MustCompile(`\breturn\b`)

func wrapBody(body string) string {
	if returnStmt.MatchString(body) {
		return body
	}
	return "\treturn " + strings.TrimSpace(body)
}

// Source returns the body the predicate was compiled from.
func (p *Predicate) Source() string {
	return p.src
}

// Match evaluates the predicate. A predicate that panics does not match.
func (p *Predicate) Match(value, filter any) (ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("script: predicate %q panicked: %v", p.src, r)
			ok = false
		}
	}()
	return p.match(value, filter)
}

// FilterFunc adapts a compiled predicate to a column filter.
func FilterFunc[T any](p *Predicate) dataview.FilterFunc[T] {
	return func(value any, _ T, filter any) bool {
		return p.Match(value, filter)
	}
}

// Cache compiles each source once. Compile failures are cached too.
type Cache struct {
	mu       sync.Mutex
	compiled map[string]*Predicate
	failed   map[string]error
}

// NewCache returns an empty cache. A Cache is safe for concurrent use.
func NewCache() *Cache {
	return &Cache{
		compiled: make(map[string]*Predicate),
		failed:   make(map[string]error),
	}
}

// Compile returns the cached predicate for body, compiling it on first use.
func (c *Cache) Compile(body string) (*Predicate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.compiled[body]; ok {
		return p, nil
	}
	if err, ok := c.failed[body]; ok {
		return nil, err
	}
	p, err := Compile(body)
	if err != nil {
		c.failed[body] = err
		return nil, err
	}
	c.compiled[body] = p
	return p, nil
}

// Validate reports whether body compiles.
func (c *Cache) Validate(body string) error {
	_, err := c.Compile(body)
	return err
}

// ExpressionFilter reads the column's filter value as the predicate source,
// so editing the filter text swaps the predicate. filter is bound to the
// source text. A source that does not compile matches nothing.
func ExpressionFilter[T any](c *Cache) dataview.FilterFunc[T] {
	return func(value any, _ T, filter any) bool {
		src, _ := filter.(string)
		p, err := c.Compile(src)
		if err != nil {
			return false
		}
		return p.Match(value, src)
	}
}
