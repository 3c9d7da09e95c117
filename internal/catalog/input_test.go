package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		raw   string
		value float64
		valid bool
		blank bool
	}{
		{`10`, 10, true, false},
		{`0`, 0, true, true},
		{`"10"`, 10, true, false},
		{`"0"`, 0, true, false},
		{`" 4.5 "`, 4.5, true, false},
		{`""`, 0, true, true},
		{`true`, 1, true, false},
		{`false`, 0, true, true},
		{`"abc"`, 0, false, false},
		{`"Inf"`, 0, false, false},
		{`[1]`, 0, false, false},
		{`{}`, 0, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &n))
			assert.Equal(t, tc.valid, n.Valid)
			assert.Equal(t, tc.value, n.Value)
			assert.Equal(t, tc.blank, n.Blank)
		})
	}
}

func TestFlag_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`0`, false},
		{`1`, true},
		{`""`, false},
		{`"false"`, true},
		{`null`, false},
		{`{}`, true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			f := Flag(!tc.want)
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &f))
			assert.Equal(t, tc.want, bool(f))
		})
	}
}

func TestThumbnails_UnmarshalJSON(t *testing.T) {
	var th Thumbnails
	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &th))
	assert.Equal(t, Thumbnails{"a", "b"}, th)

	require.NoError(t, json.Unmarshal([]byte(`"a"`), &th))
	assert.Equal(t, Thumbnails{}, th)

	assert.Error(t, json.Unmarshal([]byte(`["a", 1]`), &th))
}

func TestProductInput_AbsentFieldsStayNil(t *testing.T) {
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"id":5,"status":false}`), &in))

	assert.Nil(t, in.Title)
	assert.Nil(t, in.Price)
	assert.True(t, in.Status.Set)
	assert.False(t, bool(in.Status.Flag))
}

func TestOptionalFlag_Presence(t *testing.T) {
	testCases := []struct {
		body string
		set  bool
		want bool
	}{
		{`{}`, false, false},
		{`{"status":null}`, true, false},
		{`{"status":true}`, true, true},
		{`{"status":"yes"}`, true, true},
		{`{"status":0}`, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.body, func(t *testing.T) {
			var in ProductInput
			require.NoError(t, json.Unmarshal([]byte(tc.body), &in))
			assert.Equal(t, tc.set, in.Status.Set)
			assert.Equal(t, tc.want, bool(in.Status.Flag))
		})
	}
}
