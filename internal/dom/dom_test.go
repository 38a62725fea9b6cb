package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup, "https://example.com/apply")
	require.NoError(t, err)
	return doc
}

func TestParse_InvalidReaderStillParses(t *testing.T) {
	// The HTML5 parser is error-tolerant, so even junk yields a document.
	doc, err := ParseString("<<<not html>>>", "")
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestQueryAll_FindsInputs(t *testing.T) {
	doc := mustParse(t, `<form><input name="a"><input name="b"><select name="c"></select></form>`)
	inputs := doc.QueryAll("input")
	assert.Len(t, inputs, 2)
	assert.Equal(t, "a", inputs[0].Name())
	assert.Equal(t, "b", inputs[1].Name())
}

func TestElement_TypeDefaultsToText(t *testing.T) {
	doc := mustParse(t, `<input name="plain"><input type="EMAIL" name="mail">`)
	els := doc.QueryAll("input")
	require.Len(t, els, 2)
	assert.Equal(t, "text", els[0].Type())
	assert.Equal(t, "email", els[1].Type())
}

func TestValue_ByTag(t *testing.T) {
	doc := mustParse(t, `
		<input name="i" value="hello">
		<textarea name="t">  some text  </textarea>
		<select name="s"><option value="x">X</option><option value="y" selected>Y</option></select>
		<select name="d"><option value="first">First</option><option value="second">Second</option></select>
		<select name="m" multiple><option value="a">A</option></select>`)

	assert.Equal(t, "hello", doc.Query(`input[name="i"]`).Value())
	assert.Equal(t, "some text", doc.Query(`textarea`).Value())
	assert.Equal(t, "y", doc.Query(`select[name="s"]`).Value())
	// No explicit selection falls back to the first option, matching browsers.
	assert.Equal(t, "first", doc.Query(`select[name="d"]`).Value())
	// Multi-selects default to nothing selected.
	assert.Equal(t, "", doc.Query(`select[name="m"]`).Value())
}

func TestSetValue_Input(t *testing.T) {
	doc := mustParse(t, `<input name="city">`)
	el := doc.Query("input")
	require.NoError(t, el.SetValue("Lisbon"))
	assert.Equal(t, "Lisbon", el.Value())
}

func TestSetValue_Textarea(t *testing.T) {
	doc := mustParse(t, `<textarea>old</textarea>`)
	el := doc.Query("textarea")
	require.NoError(t, el.SetValue("new content"))
	assert.Equal(t, "new content", el.Value())
}

func TestSetValue_SelectMovesSelection(t *testing.T) {
	doc := mustParse(t, `<select><option value="a" selected>A</option><option value="b">B</option></select>`)
	el := doc.Query("select")
	require.NoError(t, el.SetValue("b"))
	assert.Equal(t, "b", el.Value())

	err := el.SetValue("missing")
	assert.ErrorIs(t, err, ErrNoSuchOption)
	assert.Equal(t, "b", el.Value(), "failed set must not disturb the selection")
}

func TestSetChecked_RadioGroupIsExclusive(t *testing.T) {
	doc := mustParse(t, `
		<input type="radio" name="visa" value="yes" checked>
		<input type="radio" name="visa" value="no">
		<input type="radio" name="other" value="x" checked>`)
	radios := doc.QueryAll(`input[name="visa"]`)
	require.Len(t, radios, 2)

	require.NoError(t, radios[1].SetChecked(true))
	assert.False(t, radios[0].Checked())
	assert.True(t, radios[1].Checked())
	// Unrelated groups are untouched.
	assert.True(t, doc.Query(`input[name="other"]`).Checked())
}

func TestDispatchEvent_RecordsInOrder(t *testing.T) {
	doc := mustParse(t, `<input name="a"><input name="b">`)
	a, b := doc.QueryAll("input")[0], doc.QueryAll("input")[1]

	require.NoError(t, a.DispatchEvent("input", true))
	require.NoError(t, b.DispatchEvent("input", true))
	require.NoError(t, a.DispatchEvent("change", true))

	events := doc.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "input", events[0].Type)
	assert.True(t, events[0].Bubbles)
	assert.Equal(t, "b", events[1].Target.Name())
	assert.Equal(t, "change", events[2].Type)

	assert.Len(t, doc.EventsFor(a), 2)
	doc.ClearEvents()
	assert.Empty(t, doc.Events())
}

func TestVisible_StaticSignals(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		visible bool
	}{
		{"plain input", `<input id="t">`, true},
		{"hidden type", `<input id="t" type="hidden">`, false},
		{"hidden attribute", `<input id="t" hidden>`, false},
		{"display none", `<input id="t" style="display:none">`, false},
		{"ancestor display none", `<div style="display: none"><input id="t"></div>`, false},
		{"visibility hidden", `<div style="visibility:hidden"><input id="t"></div>`, false},
		{"zero opacity", `<input id="t" style="opacity: 0">`, false},
		{"aria hidden ancestor", `<div aria-hidden="true"><input id="t"></div>`, false},
		{"nonzero opacity", `<input id="t" style="opacity:0.5">`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.markup)
			assert.Equal(t, tt.visible, doc.Query("#t").Visible())
		})
	}
}

func TestVisible_AnnotationOverridesStatics(t *testing.T) {
	// The capture script's verdict wins over anything it could already see.
	doc := mustParse(t, `
		<input id="shown" style="display:none" data-fs-hidden="false">
		<input id="hidden" data-fs-hidden="1">`)
	assert.True(t, doc.Query("#shown").Visible())
	assert.False(t, doc.Query("#hidden").Visible())
}

func TestVisible_ZeroAreaRect(t *testing.T) {
	doc := mustParse(t, `<input id="t" data-fs-rect="10,20,0,0">`)
	assert.False(t, doc.Query("#t").Visible())
}

func TestBoundingBox(t *testing.T) {
	doc := mustParse(t, `<input id="a" data-fs-rect="10,20,100,40"><input id="b"><input id="c" data-fs-rect="bad">`)

	rect, ok := doc.Query("#a").BoundingBox()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 10, Y: 20, W: 100, H: 40}, rect)
	assert.Equal(t, 60.0, rect.CenterX())
	assert.Equal(t, 60.0, rect.Bottom())

	_, ok = doc.Query("#b").BoundingBox()
	assert.False(t, ok)
	_, ok = doc.Query("#c").BoundingBox()
	assert.False(t, ok)
}

func TestTextExcluding_StripsNestedControl(t *testing.T) {
	doc := mustParse(t, `<label id="l">Email address <input value="x@y.z"> <span>(required)</span></label>`)
	label := doc.Query("#l")
	assert.Equal(t, "Email address (required)", label.TextExcluding("input", "select", "textarea"))
}

func TestRoots_IncludesFramesAndShadow(t *testing.T) {
	doc := mustParse(t, `
		<form><input name="main"></form>
		<iframe srcdoc="&lt;input name='framed'&gt;"></iframe>
		<div><template shadowrootmode="open"><input name="shadowed"></template></div>`)

	roots := doc.Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, RootDocument, roots[0].Kind)
	assert.Equal(t, RootFrame, roots[1].Kind)
	assert.Equal(t, RootShadow, roots[2].Kind)

	assert.Equal(t, "framed", roots[1].QueryAll("input")[0].Name())
	assert.Equal(t, "shadowed", roots[2].QueryAll("input")[0].Name())
}

func TestRoots_ClosedShadowSkipped(t *testing.T) {
	doc := mustParse(t, `<template shadowrootmode="closed"><input name="x"></template>`)
	roots := doc.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, RootDocument, roots[0].Kind)
}

func TestRoots_WalkBounded(t *testing.T) {
	filler := strings.Repeat("<i></i>", MaxWalkNodes+100)
	shadow := `<template shadowrootmode="open"><input name="shadowed"></template>`

	early := mustParse(t, shadow+filler)
	require.Len(t, early.Roots(), 2)

	late := mustParse(t, filler+shadow)
	assert.Len(t, late.Roots(), 1, "shadow roots past the walk bound stay undiscovered")
}

func TestEvents_FrameSharesLog(t *testing.T) {
	doc := mustParse(t, `<iframe srcdoc="&lt;input name='framed'&gt;"></iframe>`)
	roots := doc.Roots()
	require.Len(t, roots, 2)
	framed := roots[1].QueryAll("input")[0]
	require.NoError(t, framed.DispatchEvent("input", true))
	assert.Len(t, doc.Events(), 1, "frame events must land in the top document's log")
}

func TestSelector_UniqueID(t *testing.T) {
	doc := mustParse(t, `<div><input id="email-field"></div>`)
	assert.Equal(t, "#email-field", doc.Query("input").Selector())
}

func TestSelector_DuplicateIDFallsBack(t *testing.T) {
	doc := mustParse(t, `<div><input id="dup"></div><div><input id="dup"></div>`)
	els := doc.QueryAll("input")
	require.Len(t, els, 2)
	assert.NotEqual(t, "#dup", els[0].Selector())
	assert.NotEqual(t, els[0].Selector(), els[1].Selector())
}

func TestSelector_NthOfTypeRoundTrips(t *testing.T) {
	doc := mustParse(t, `<form><input name="first"><input name="second"><input name="third"></form>`)
	for _, el := range doc.QueryAll("input") {
		got := doc.QueryAll(el.Selector())
		require.Len(t, got, 1, "selector %q must match exactly one element", el.Selector())
		assert.Equal(t, el.Node(), got[0].Node())
	}
}

func TestDetach(t *testing.T) {
	doc := mustParse(t, `<form><input name="a"></form>`)
	el := doc.Query("input")
	assert.False(t, el.Detached())

	el.Detach()
	assert.True(t, el.Detached())
	assert.ErrorIs(t, el.SetValue("x"), ErrDetached)
	assert.ErrorIs(t, el.DispatchEvent("input", true), ErrDetached)
}

func TestAttributeHelpers(t *testing.T) {
	doc := mustParse(t, `<input name="phone" maxlength="10" required placeholder="(555) 555-5555">
		<textarea aria-required="true"></textarea>`)
	el := doc.Query("input")

	n, ok := el.MaxLength()
	require.True(t, ok)
	assert.Equal(t, 10, n)
	assert.True(t, el.Required())
	assert.True(t, doc.Query("textarea").Required())

	_, ok = doc.Query("textarea").MaxLength()
	assert.False(t, ok)
}

func TestAncestorsAndSiblings(t *testing.T) {
	doc := mustParse(t, `<div id="outer"><div id="inner"><span>hi</span><b>x</b><input></div></div>`)
	el := doc.Query("input")

	anc := el.Ancestors(2)
	require.Len(t, anc, 2)
	assert.Equal(t, "inner", anc[0].ID())
	assert.Equal(t, "outer", anc[1].ID())

	prev := el.PrevElement()
	require.NotNil(t, prev)
	assert.Equal(t, "b", prev.Tag())
	assert.Len(t, el.PrevElements(), 2)
}
