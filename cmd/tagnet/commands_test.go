package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const cooccurrenceRows = `[
	{"tag1": "a", "tag2": "b", "count": 5},
	{"tag1": "b", "tag2": "c", "count": "3"},
	{"tag1": null, "tag2": "c", "count": 1}
]`

func TestGraphCommand(t *testing.T) {
	out, err := run(t, cooccurrenceRows, "graph")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": [
			{"id": 0, "name": "a", "count": 5},
			{"id": 1, "name": "b", "count": 8},
			{"id": 2, "name": "c", "count": 3}
		],
		"links": [
			{"source": 0, "target": 1, "count": 5},
			{"source": 1, "target": 2, "count": 3}
		]
	}`, out)
}

func TestGraphCommand_Layout(t *testing.T) {
	out, err := run(t, cooccurrenceRows, "graph", "--layout", "--iterations", "20")
	require.NoError(t, err)

	var pg domain.PositionedGraph
	require.NoError(t, json.Unmarshal([]byte(out), &pg))
	require.Len(t, pg.Nodes, 3)
	assert.Equal(t, "b", pg.Nodes[1].Name)
	assert.Len(t, pg.Links, 2)
}

func TestGraphCommand_Errors(t *testing.T) {
	_, err := run(t, `[]`, "graph", "--require-nonempty")
	assert.ErrorIs(t, err, domain.ErrEmptyGraph)

	_, err = run(t, `[{"tag1": "a", "tag2": "a", "count": 1}]`, "--strict", "graph")
	assert.ErrorIs(t, err, domain.ErrAllRowsMalformed)

	_, err = run(t, `not json`, "graph")
	assert.Error(t, err)
}

const monthlyRows = `[
	{"tag": "a", "yearMonth": "2019-02-01", "count": 4},
	{"tag": "a", "yearMonth": "2019-01-01", "count": 2},
	{"tag": "b", "yearMonth": "2019-01-01", "count": 1}
]`

func TestMonthlyCommand(t *testing.T) {
	out, err := run(t, monthlyRows, "monthly")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"yearMonth": "2019-01-01", "a": 2, "b": 1},
		{"yearMonth": "2019-02-01", "a": 4}
	]`, out)
}

func TestMonthlyCommand_CSV(t *testing.T) {
	out, err := run(t, monthlyRows, "monthly", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "yearMonth,a,b\n2019-01-01,2,1\n2019-02-01,4,\n", out)

	_, err = run(t, monthlyRows, "monthly", "--format", "xml")
	assert.Error(t, err)
}

func TestGraphCommand_ReversedRows(t *testing.T) {
	out, err := run(t, `[
		{"tag1": "a", "tag2": "b", "count": 5},
		{"tag1": "b", "tag2": "a", "count": 3}
	]`, "graph")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": [
			{"id": 0, "name": "a", "count": 8},
			{"id": 1, "name": "b", "count": 8}
		],
		"links": [
			{"source": 0, "target": 1, "count": 5},
			{"source": 0, "target": 1, "count": 3}
		]
	}`, out)
}
