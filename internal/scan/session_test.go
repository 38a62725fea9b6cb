package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formscout/formscout/internal/classify"
)

func TestSession_GenerationAdvances(t *testing.T) {
	s := NewSession()
	assert.Equal(t, uint64(0), s.Generation())

	gen, fields := s.Rescan(mustDoc(t, `<input name="email">`))
	assert.Equal(t, uint64(1), gen)
	assert.Len(t, fields, 1)

	gen, _ = s.Rescan(mustDoc(t, `<input name="email"><input name="phone">`))
	assert.Equal(t, uint64(2), gen)

	got, list := s.Fields()
	assert.Equal(t, uint64(2), got)
	assert.Len(t, list, 2)
}

func TestSession_ResolveValidRef(t *testing.T) {
	s := NewSession()
	gen, _ := s.Rescan(mustDoc(t, `<input name="email"><input name="phone">`))

	f, err := s.Resolve(Ref{Generation: gen, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, "phone", f.Name)
}

func TestSession_StaleGenerationRejected(t *testing.T) {
	s := NewSession()
	oldGen, _ := s.Rescan(mustDoc(t, `<input name="email">`))
	s.Rescan(mustDoc(t, `<input name="email">`))

	_, err := s.Resolve(Ref{Generation: oldGen, Index: 0})
	assert.ErrorIs(t, err, ErrStaleGeneration)
}

func TestSession_OutOfRangeRejected(t *testing.T) {
	s := NewSession()
	gen, _ := s.Rescan(mustDoc(t, `<input name="email">`))

	_, err := s.Resolve(Ref{Generation: gen, Index: 5})
	assert.ErrorIs(t, err, ErrFieldOutOfRange)

	_, err = s.Resolve(Ref{Generation: gen, Index: -1})
	assert.ErrorIs(t, err, ErrFieldOutOfRange)
}

func TestSession_ResolveBeforeScan(t *testing.T) {
	s := NewSession()
	_, err := s.Resolve(Ref{Generation: 0, Index: 0})
	assert.ErrorIs(t, err, ErrNoScan)
}

func TestSession_VerifyGeneration(t *testing.T) {
	s := NewSession()
	assert.ErrorIs(t, s.VerifyGeneration(0), ErrNoScan)

	gen, _ := s.Rescan(mustDoc(t, `<input name="email">`))
	require.NoError(t, s.VerifyGeneration(gen))

	s.Rescan(mustDoc(t, `<input name="email">`))
	assert.ErrorIs(t, s.VerifyGeneration(gen), ErrStaleGeneration)
}

func TestSession_SummariesResnapshotValues(t *testing.T) {
	s := NewSession()
	doc := mustDoc(t, `<label for="e">Email</label><input id="e" name="email">`)
	gen, fields := s.Rescan(doc)

	_, sums := s.Summaries()
	require.Len(t, sums, 1)
	assert.False(t, sums[0].HasValue)
	assert.Equal(t, classify.CategoryEmail, sums[0].Category)
	assert.Equal(t, "Email", sums[0].Label)
	assert.Equal(t, "#e", sums[0].Selector)

	// Mutating the document after the scan must show up in the next
	// serialization without a rescan.
	require.NoError(t, fields[0].Primary().SetValue("a@b.co"))
	gotGen, sums := s.Summaries()
	assert.Equal(t, gen, gotGen)
	assert.True(t, sums[0].HasValue)
}

func TestSession_SummariesRefreshSelectOptions(t *testing.T) {
	s := NewSession()
	doc := mustDoc(t, `<select name="state">
		<option value="">Select...</option>
		<option value="CA">California</option>
	</select>`)
	_, fields := s.Rescan(doc)

	require.NoError(t, fields[0].Primary().SetValue("CA"))
	_, sums := s.Summaries()
	require.Len(t, sums, 1)
	require.Len(t, sums[0].Options, 2)
	assert.True(t, sums[0].Options[1].Selected)
	assert.True(t, sums[0].HasValue)
}
