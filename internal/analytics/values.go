// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// NotAvailable is the label shown for missing text fields.
const NotAvailable = "N/A"

// DefaultSeverity is the score of an unrecognized severity label.
const DefaultSeverity = 5

var severityScale = map[string]float64{
	"critical": 10,
	"major":    7,
	"minor":    4,
	"low":      2,
}

// SeverityScore maps a severity label onto the fixed numeric scale.
func SeverityScore(label string) float64 {
	if s, ok := severityScale[strings.ToLower(strings.TrimSpace(label))]; ok {
		return s
	}
	return DefaultSeverity
}

var numericPrefix = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// ParseCurrency keeps only digits, '.' and '-' and parses the longest numeric
// prefix of what remains, so "$10,000 - $15,000" is 10000.
// No numeric prefix yields 0.
func ParseCurrency(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	m := numericPrefix.FindString(b.String())
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// CurrencyValue parses a money amount that may already be numeric.
func CurrencyValue(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	s, ok := ScalarString(v)
	if !ok {
		return 0
	}
	return ParseCurrency(s)
}

// Percentage is count/total*100 in [0,100]. A zero total yields 0.
func Percentage(count, total float64) float64 {
	if total == 0 {
		return 0
	}
	p := count / total * 100
	if math.IsNaN(p) {
		return 0
	}
	return Round2(math.Max(0, math.Min(100, p)))
}

// ClampImpact bounds an impact score to [2,10].
func ClampImpact(v float64) float64 {
	return math.Max(2, math.Min(10, v))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GroupScore accumulates a running sum and count per key, preserving the order
// in which keys were first seen.
type GroupScore struct {
	order []string
	acc   map[string]*groupAcc
}

type groupAcc struct {
	sum   float64
	count int
}

// NewGroupScore returns an empty accumulator.
func NewGroupScore() *GroupScore {
	return &GroupScore{acc: make(map[string]*groupAcc)}
}

// Add folds v into the running sum for key.
func (g *GroupScore) Add(key string, v float64) {
	a, ok := g.acc[key]
	if !ok {
		a = &groupAcc{}
		g.acc[key] = a
		g.order = append(g.order, key)
	}
	a.sum += v
	a.count++
}

// Keys returns the keys in first-seen order.
func (g *GroupScore) Keys() []string { return g.order }

// Score finalizes key as sum/(count*10), capped at 10.
func (g *GroupScore) Score(key string) float64 {
	a, ok := g.acc[key]
	if !ok || a.count == 0 {
		return 0
	}
	return Round2(math.Min(10, a.sum/(float64(a.count)*10)))
}

// Sum returns the raw sum for key.
func (g *GroupScore) Sum(key string) float64 {
	if a, ok := g.acc[key]; ok {
		return a.sum
	}
	return 0
}

// CanonicalOrder orders keys by their positions in canon,
// with keys absent from canon appended in lexical order.
func CanonicalOrder(keys []string, canon []string) []string {
	rank := make(map[string]int, len(canon))
	for i, c := range canon {
		rank[c] = i
	}
	out := append([]string(nil), keys...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		}
		return out[i] < out[j]
	})
	return out
}

// NameValue is a labelled numeric point, the common chart datum.
type NameValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// NameValuePct is a NameValue with its share of the total.
type NameValuePct struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}
