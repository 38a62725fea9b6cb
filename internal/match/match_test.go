package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var states = []Option{
	{Value: "CA", Label: "California"},
	{Value: "NY", Label: "New York"},
	{Value: "WA", Label: "Washington"},
}

func TestBestOption_Exact(t *testing.T) {
	v, ok := BestOption(states, "California")
	require.True(t, ok)
	assert.Equal(t, "CA", v)

	v, ok = BestOption(states, "ny")
	require.True(t, ok)
	assert.Equal(t, "NY", v)
}

func TestBestOption_Substring(t *testing.T) {
	// Target inside label.
	v, ok := BestOption(states, "cali")
	require.True(t, ok)
	assert.Equal(t, "CA", v)

	// Label inside target.
	v, ok = BestOption(states, "New York, United States")
	require.True(t, ok)
	assert.Equal(t, "NY", v)
}

func TestBestOption_ValueContains(t *testing.T) {
	opts := []Option{{Value: "us-remote", Label: ""}}
	v, ok := BestOption(opts, "remote")
	require.True(t, ok)
	assert.Equal(t, "us-remote", v)
}

func TestBestOption_TokenSplit(t *testing.T) {
	// "San Francisco, CA" matches the CA option through its second token.
	v, ok := BestOption(states, "San Francisco, CA")
	require.True(t, ok)
	assert.Equal(t, "CA", v)

	v, ok = BestOption(states, "Seattle\nWashington")
	require.True(t, ok)
	assert.Equal(t, "WA", v)
}

func TestBestOption_BooleanNormalization(t *testing.T) {
	auth := []Option{
		{Value: "1", Label: "Yes, I am authorized"},
		{Value: "0", Label: "No, I require sponsorship"},
	}
	v, ok := BestOption(auth, "true")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	v, ok = BestOption(auth, "false")
	require.True(t, ok)
	assert.Equal(t, "0", v)

	words := []Option{{Value: "agree", Label: "Yes"}, {Value: "decline", Label: "No"}}
	v, ok = BestOption(words, "yes")
	require.True(t, ok)
	assert.Equal(t, "agree", v)
}

func TestBestOption_Miss(t *testing.T) {
	_, ok := BestOption(states, "TX")
	assert.False(t, ok)

	_, ok = BestOption(states, "")
	assert.False(t, ok)

	_, ok = BestOption(nil, "anything")
	assert.False(t, ok)
}

func TestBestOption_ExactBeatsSubstring(t *testing.T) {
	opts := []Option{
		{Value: "new-york-city", Label: "New York City"},
		{Value: "NY", Label: "New York"},
	}
	v, ok := BestOption(opts, "new york")
	require.True(t, ok)
	assert.Equal(t, "NY", v, "an exact label match must beat an earlier substring match")
}

func TestBestOptions_MultiTargets(t *testing.T) {
	langs := []Option{
		{Value: "go", Label: "Go"},
		{Value: "py", Label: "Python"},
		{Value: "rs", Label: "Rust"},
	}
	got := BestOptions(langs, []string{"Python", "Go", "python", "COBOL"})
	assert.Equal(t, []string{"py", "go"}, got, "order follows targets, duplicates and misses drop out")
}
