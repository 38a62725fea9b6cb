package fill

import (
	"encoding/json"
	"fmt"

	"github.com/formscout/formscout/internal/match"
	"github.com/formscout/formscout/internal/scan"
)

// textFillScript assigns through the native prototype value setter so
// framework-controlled inputs (React and friends intercept the instance
// property) still see the change, then replays the contractual event order.
const textFillScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	const proto = el instanceof HTMLTextAreaElement
		? HTMLTextAreaElement.prototype
		: HTMLInputElement.prototype;
	const desc = Object.getOwnPropertyDescriptor(proto, 'value');
	if (desc && desc.set) {
		desc.set.call(el, %s);
	} else {
		el.value = %s;
	}
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	el.dispatchEvent(new Event('blur', { bubbles: true }));
	return true;
})()`

const selectFillScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	el.value = %s;
	if (el.value !== %s) return false;
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})()`

const checkFillScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	el.checked = true;
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})()`

// ScriptFor builds the JavaScript expression that applies the same mutation
// against the live page the snapshot was captured from. The expression
// evaluates to a boolean. selector must address the concrete element to
// mutate; for groups that is the matched member input, not the group.
func ScriptFor(kind scan.Kind, selector, value string) (string, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return "", fmt.Errorf("failed to encode selector: %w", err)
	}
	val, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	switch kind {
	case scan.KindText, scan.KindTextarea:
		return fmt.Sprintf(textFillScript, sel, val, val), nil
	case scan.KindSelect:
		return fmt.Sprintf(selectFillScript, sel, val, val), nil
	case scan.KindRadioGroup, scan.KindCheckboxGroup:
		return fmt.Sprintf(checkFillScript, sel), nil
	case scan.KindFile:
		return "", fmt.Errorf("file inputs cannot be filled by script")
	default:
		return "", fmt.Errorf("no fill script for kind %q", kind)
	}
}

// MemberSelector addresses the group member carrying the matched value for
// script execution on the live page.
func MemberSelector(field *scan.Field, value string) (string, bool) {
	el := memberByValue(field.Elements, value)
	if el == nil {
		return "", false
	}
	return el.Selector(), true
}

// Step is one script execution against the live page.
type Step struct {
	Selector string
	Value    string
	Script   string
}

// Plan resolves a fill into live-page steps without touching the snapshot:
// option matching runs here exactly as it does for static fills, so the
// browser side only executes. ok is false when the fill could not apply
// (no option match, file input, empty targets).
func Plan(field *scan.Field, values []string) ([]Step, bool) {
	if len(values) == 0 {
		return nil, false
	}
	switch field.Kind {
	case scan.KindText, scan.KindTextarea:
		sel := field.Selector()
		script, err := ScriptFor(field.Kind, sel, values[0])
		if err != nil {
			return nil, false
		}
		return []Step{{Selector: sel, Value: values[0], Script: script}}, true
	case scan.KindSelect:
		matched, ok := match.BestOption(field.Options, values[0])
		if !ok {
			return nil, false
		}
		sel := field.Selector()
		script, err := ScriptFor(field.Kind, sel, matched)
		if err != nil {
			return nil, false
		}
		return []Step{{Selector: sel, Value: matched, Script: script}}, true
	case scan.KindRadioGroup, scan.KindCheckboxGroup:
		matched := match.BestOptions(field.Options, values)
		if len(matched) == 0 {
			return nil, false
		}
		if field.Kind == scan.KindRadioGroup {
			matched = matched[:1]
		}
		var steps []Step
		for _, want := range matched {
			sel, ok := MemberSelector(field, want)
			if !ok {
				continue
			}
			script, err := ScriptFor(field.Kind, sel, want)
			if err != nil {
				continue
			}
			steps = append(steps, Step{Selector: sel, Value: want, Script: script})
		}
		return steps, len(steps) > 0
	default:
		return nil, false
	}
}
