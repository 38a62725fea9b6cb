package browser

import "fmt"

// annotateScript stamps layout facts onto the live DOM before capture so the
// static snapshot keeps what only a rendering engine knows: element rects,
// computed visibility, open shadow root content, and same-origin iframe
// documents. Rects stay frame-local; label proximity only compares elements
// within one root, so no cross-frame offset math is needed. Cross-origin
// frames throw on contentDocument access and stay opaque.
//
// The %d placeholder is the element budget shared across all reachable
// documents. The script evaluates to the number of annotated elements.
const annotateScript = `(() => {
	let budget = %d;
	let stamped = 0;
	const w = window.__fsWatch;
	if (w) w.muted = true;
	const round = (v) => Math.round(v * 100) / 100;
	const hiddenBy = (cs) => cs.display === 'none' ||
		cs.visibility === 'hidden' ||
		cs.visibility === 'collapse' ||
		parseFloat(cs.opacity) === 0;
	const annotate = (el) => {
		const view = el.ownerDocument.defaultView;
		if (!view) return;
		const r = el.getBoundingClientRect();
		el.setAttribute('data-fs-rect',
			[round(r.x), round(r.y), round(r.width), round(r.height)].join(','));
		try {
			if (hiddenBy(view.getComputedStyle(el))) {
				el.setAttribute('data-fs-hidden', 'true');
			} else {
				el.removeAttribute('data-fs-hidden');
			}
		} catch (e) {}
		stamped++;
	};
	const process = (scope) => {
		const els = scope.querySelectorAll('*');
		for (const el of els) {
			if (budget-- <= 0) return;
			annotate(el);
			if (el.shadowRoot) {
				process(el.shadowRoot);
				const tpl = el.ownerDocument.createElement('template');
				tpl.setAttribute('shadowrootmode', 'open');
				tpl.innerHTML = el.shadowRoot.innerHTML;
				el.prepend(tpl);
			}
			if (el.tagName === 'IFRAME') {
				try {
					const fdoc = el.contentDocument;
					if (fdoc && fdoc.documentElement) {
						process(fdoc);
						el.setAttribute('srcdoc', fdoc.documentElement.outerHTML);
					}
				} catch (e) {}
			}
		}
	};
	process(document);
	if (w) setTimeout(() => { w.muted = false; }, 0);
	return stamped;
})()`

// annotationScript binds the element budget into the capture script.
func annotationScript(maxNodes int) string {
	return fmt.Sprintf(annotateScript, maxNodes)
}

// watchHookScript installs a MutationObserver that queues form-relevant
// mutation records on the page for the Go side to drain. The attribute
// filter keeps the capture script's own data-fs-* writes from feeding back
// into the observer, and the muted flag covers the capture's template and
// srcdoc edits. Queued subtrees are clipped; the queued element itself is
// always a form node, so a clipped tail never hides the match.
const watchHookScript = `(() => {
	if (window.__fsWatch) return true;
	const state = { queue: [], muted: false };
	const SEL = 'form, input, select, textarea';
	const hit = (n) => {
		if (!n || n.nodeType !== 1) return null;
		if (n.matches(SEL)) return n;
		return n.querySelector ? n.querySelector(SEL) : null;
	};
	const brief = (el) => el.tagName === 'FORM'
		? el.cloneNode(false).outerHTML
		: el.outerHTML.slice(0, 2048);
	const obs = new MutationObserver((records) => {
		if (state.muted) return;
		for (const r of records) {
			let el = hit(r.target);
			for (let i = 0; !el && i < r.addedNodes.length; i++) el = hit(r.addedNodes[i]);
			for (let i = 0; !el && i < r.removedNodes.length; i++) el = hit(r.removedNodes[i]);
			if (!el) continue;
			if (state.queue.length < 64) {
				state.queue.push({ kind: r.type, subtree: brief(el) });
			}
		}
	});
	obs.observe(document.documentElement, {
		childList: true,
		subtree: true,
		attributes: true,
		attributeFilter: ['hidden', 'style', 'disabled', 'type'],
	});
	state.observer = obs;
	window.__fsWatch = state;
	return true;
})()`

// drainScript empties the queued mutation records in one round trip.
const drainScript = `(() => {
	const w = window.__fsWatch;
	if (!w) return [];
	return w.queue.splice(0, w.queue.length);
})()`
