package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// CooccurrenceRow is one raw row from the query service. Tags are nil when
// the store returned NULL; Count holds whatever numeric value came back
// (int64 from SQL, json.Number or float64 from JSON) and is validated by
// the normalizer.
type CooccurrenceRow struct {
	Tag1  *string     `json:"tag1"`
	Tag2  *string     `json:"tag2"`
	Count interface{} `json:"count"`
}

// MonthlyRow is a raw per-tag-month row.
type MonthlyRow struct {
	Tag       *string     `json:"tag"`
	YearMonth *string     `json:"yearMonth"`
	Count     interface{} `json:"count"`
}

// TotalRow is a raw per-tag total row.
type TotalRow struct {
	Tag   *string     `json:"tag"`
	Count interface{} `json:"count"`
}

// TagPair is a validated co-occurrence row. Tag1 != Tag2.
type TagPair struct {
	Tag1  string `json:"tag1"`
	Tag2  string `json:"tag2"`
	Count int64  `json:"count"`
}

// TagMonthCount is a validated per-tag-month row.
type TagMonthCount struct {
	Tag       string `json:"tag"`
	YearMonth string `json:"yearMonth"`
	Count     int64  `json:"count"`
}

// TagCount is a validated per-tag total.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// Node is a tag in the co-occurrence graph. Count is the sum of the counts
// of every incident link.
type Node struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Link is an undirected co-occurrence edge between two node ids.
type Link struct {
	Source int   `json:"source"`
	Target int   `json:"target"`
	Count  int64 `json:"count"`
}

// Graph is built fresh for every request. Nodes are in first-seen order,
// links in input order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// NewGraph returns an empty graph whose slices encode as [] rather than null.
func NewGraph() *Graph {
	return &Graph{Nodes: []Node{}, Links: []Link{}}
}

// PositionedNode is a Node plus the coordinates assigned by a layout engine.
type PositionedNode struct {
	Node
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PositionedGraph struct {
	Nodes []PositionedNode `json:"nodes"`
	Links []Link           `json:"links"`
}

// Window bounds item creation time for window-scoped queries (inclusive).
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow matches the open range used when a caller gives no dates.
func DefaultWindow() Window {
	return Window{
		Start: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// YearMonthKey is the reserved column name of a monthly record.
const YearMonthKey = "yearMonth"

// MonthlyRecord is one month of the pivoted time series: a count per tag
// observed in that month. Tags keeps the order in which tags were first
// set so the JSON encoding is stable.
type MonthlyRecord struct {
	YearMonth string
	Tags      []string
	Counts    map[string]int64
}

func NewMonthlyRecord(yearMonth string) *MonthlyRecord {
	return &MonthlyRecord{YearMonth: yearMonth, Counts: map[string]int64{}}
}

// Set records count for tag, replacing any earlier value for the same tag.
func (r *MonthlyRecord) Set(tag string, count int64) {
	if _, ok := r.Counts[tag]; !ok {
		r.Tags = append(r.Tags, tag)
	}
	r.Counts[tag] = count
}

func (r *MonthlyRecord) Get(tag string) (int64, bool) {
	c, ok := r.Counts[tag]
	return c, ok
}

// MarshalJSON flattens the record into {"yearMonth": ..., "<tag>": n, ...}.
func (r MonthlyRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	key, _ := json.Marshal(YearMonthKey)
	val, err := json.Marshal(r.YearMonth)
	if err != nil {
		return nil, err
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	for _, tag := range r.Tags {
		k, err := json.Marshal(tag)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Counts[tag])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
