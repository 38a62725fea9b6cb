// Package fill writes resolved values into detected fields.
//
// Fills never panic and never return errors: any DOM-level failure (detached
// element, missing option) is logged and reported as false. Text writes are
// followed by input, change, and blur events in that exact order, all
// bubbling; frameworks with synthetic event delegation depend on seeing a
// value change before the commit signals, so the ordering is contractual.
package fill

import (
	"log"

	"github.com/formscout/formscout/internal/dom"
	"github.com/formscout/formscout/internal/match"
	"github.com/formscout/formscout/internal/scan"
)

// textEventOrder is the dispatch sequence for text-like fills.
var textEventOrder = []string{"input", "change", "blur"}

// Engine executes fills against document snapshots.
type Engine struct {
	verbose bool
}

// New returns a fill engine. verbose enables per-fill logging.
func New(verbose bool) *Engine {
	return &Engine{verbose: verbose}
}

// Fill writes a single value into a field and reports success. Closed
// vocabularies go through the option matcher; file inputs always refuse.
func (e *Engine) Fill(field *scan.Field, value string) bool {
	switch field.Kind {
	case scan.KindText, scan.KindTextarea:
		return e.fillText(field, value)
	case scan.KindSelect:
		return e.fillSelect(field, value)
	case scan.KindRadioGroup:
		return e.fillGroup(field, []string{value}, true)
	case scan.KindCheckboxGroup:
		return e.fillGroup(field, []string{value}, false)
	case scan.KindFile:
		e.logf("refusing file input %q: file values cannot be set programmatically", field.Name)
		return false
	default:
		e.logf("unknown field kind %q", field.Kind)
		return false
	}
}

// FillMulti writes several values into one field. Only checkbox groups
// accept more than one; other kinds take the first value.
func (e *Engine) FillMulti(field *scan.Field, values []string) bool {
	if len(values) == 0 {
		return false
	}
	if field.Kind == scan.KindCheckboxGroup {
		return e.fillGroup(field, values, false)
	}
	return e.Fill(field, values[0])
}

func (e *Engine) fillText(field *scan.Field, value string) bool {
	el := field.Primary()
	if el == nil {
		return false
	}
	if err := el.SetValue(value); err != nil {
		e.logf("set value on %q failed: %v", field.Name, err)
		return false
	}
	for _, typ := range textEventOrder {
		if err := el.DispatchEvent(typ, true); err != nil {
			e.logf("dispatch %s on %q failed: %v", typ, field.Name, err)
			return false
		}
	}
	e.logf("filled %s field %q", field.Kind, field.Name)
	return true
}

func (e *Engine) fillSelect(field *scan.Field, value string) bool {
	el := field.Primary()
	if el == nil {
		return false
	}
	matched, ok := match.BestOption(field.Options, value)
	if !ok {
		e.logf("no option on %q matches %q", field.Name, value)
		return false
	}
	if err := el.SetValue(matched); err != nil {
		e.logf("select %q on %q failed: %v", matched, field.Name, err)
		return false
	}
	if err := el.DispatchEvent("change", true); err != nil {
		e.logf("dispatch change on %q failed: %v", field.Name, err)
		return false
	}
	e.logf("selected %q on %q", matched, field.Name)
	return true
}

// fillGroup checks the group members matching the targets. single restricts
// to one match (radio semantics).
func (e *Engine) fillGroup(field *scan.Field, targets []string, single bool) bool {
	matched := match.BestOptions(field.Options, targets)
	if len(matched) == 0 {
		e.logf("no options on group %q match %v", field.Name, targets)
		return false
	}
	if single {
		matched = matched[:1]
	}
	checked := 0
	for _, want := range matched {
		el := memberByValue(field.Elements, want)
		if el == nil {
			continue
		}
		if err := el.SetChecked(true); err != nil {
			e.logf("check %q on group %q failed: %v", want, field.Name, err)
			continue
		}
		if err := el.DispatchEvent("change", true); err != nil {
			e.logf("dispatch change on group %q failed: %v", field.Name, err)
			continue
		}
		checked++
	}
	if checked == 0 {
		return false
	}
	e.logf("checked %d option(s) on group %q", checked, field.Name)
	return true
}

func memberByValue(els []*dom.Element, value string) *dom.Element {
	for _, el := range els {
		v, ok := el.AttrOK("value")
		if !ok {
			v = "on"
		}
		if v == value {
			return el
		}
	}
	return nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.verbose {
		log.Printf("[FILL] "+format, args...)
	}
}
