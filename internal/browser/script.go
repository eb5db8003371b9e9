package browser

import (
	"encoding/json"
	"fmt"
)

// snapshotScript tags every visible interactive element with data-ai-id and
// renders the viewport as an indented text tree. When a dialog is open only
// the topmost one is rendered.
const snapshotScript = `() => {
	const TAGS = ['a', 'button', 'input', 'textarea', 'select', 'details', 'summary'];
	const ROLES = ['button', 'link', 'checkbox', 'menuitem', 'tab', 'textbox', 'combobox', 'option'];
	const SKIP = ['script', 'style', 'svg', 'path', 'noscript', 'iframe', 'template'];
	const HEADINGS = ['h1', 'h2', 'h3', 'h4', 'h5', 'h6'];
	const DIALOGS = '[role="dialog"],[role="alertdialog"],[aria-modal="true"],.modal,.overlay';
	const MAX_DEPTH = 20;

	let nextId = 1;
	for (const el of document.querySelectorAll('[data-ai-id]')) el.removeAttribute('data-ai-id');

	const attr = (el, name) => (el.getAttribute(name) || '').toLowerCase();
	const quote = (v) => '"' + v.replace(/"/g, '\\"') + '"';
	const clip = (text) => {
		const s = (text || '').replace(/\s+/g, ' ').trim();
		return s.length > 100 ? s.slice(0, 100) + '...' : s;
	};

	const shown = (el) => {
		if (!el.getBoundingClientRect || attr(el, 'aria-hidden') === 'true') return false;
		const r = el.getBoundingClientRect();
		if (r.width <= 0 || r.height <= 0) return false;
		if (r.bottom <= 0 || r.right <= 0 || r.top >= innerHeight || r.left >= innerWidth) return false;
		const st = getComputedStyle(el);
		return st.display !== 'none' && st.visibility !== 'hidden' && st.opacity !== '0';
	};

	const actionable = (el) => {
		const tab = el.getAttribute('tabindex');
		return TAGS.includes(el.tagName.toLowerCase()) || ROLES.includes(attr(el, 'role')) ||
			(tab !== null && tab !== '-1') || el.onclick != null;
	};

	const kindOf = (el, tag) => {
		const role = attr(el, 'role');
		if (tag === 'button' || role === 'button') return 'button';
		if (tag === 'a' || role === 'link') return 'link';
		if (tag !== 'input') return '';
		const type = attr(el, 'type');
		return ['checkbox', 'radio', 'search'].includes(type) ? type : 'input';
	};

	const labelOf = (el, tag) => {
		const candidates = [el.innerText || el.textContent, el.getAttribute('aria-label'), el.getAttribute('title')];
		if (tag === 'input' || tag === 'textarea') candidates.push(el.getAttribute('placeholder'));
		for (const c of candidates) {
			const s = clip(c);
			if (s) return s;
		}
		return '';
	};

	const topDialog = () => {
		let best = null;
		let bestZ = -Infinity;
		for (const el of document.querySelectorAll(DIALOGS)) {
			if (!shown(el)) continue;
			const z = parseInt(getComputedStyle(el).zIndex, 10) || 0;
			if (z >= bestZ) {
				best = el;
				bestZ = z;
			}
		}
		return best;
	};

	const describe = (el, tag) => {
		const id = nextId++;
		el.setAttribute('data-ai-id', String(id));

		const parts = ['<' + tag];
		const label = labelOf(el, tag);
		if (label) parts.push('label=' + quote(label));
		const kind = kindOf(el, tag);
		if (kind) parts.push('kind="' + kind + '"');
		if (el.closest && el.closest(DIALOGS)) parts.push('context="dialog"');
		if (tag === 'a' && el.href) parts.push('href=' + quote(el.href));
		if (['input', 'textarea', 'select'].includes(tag) && clip(el.value)) parts.push('value=' + quote(clip(el.value)));
		return '[' + id + '] ' + parts.join(' ') + '>';
	};

	const walk = (node, depth) => {
		if (depth > MAX_DEPTH) return '';
		const pad = '  '.repeat(depth);

		if (node.nodeType === Node.TEXT_NODE) {
			const text = clip(node.textContent);
			return text.length > 2 ? pad + text + '\n' : '';
		}
		if (node.nodeType !== Node.ELEMENT_NODE) return '';

		const tag = node.tagName.toLowerCase();
		if (SKIP.includes(tag) || !shown(node)) return '';

		let out = '';
		if (actionable(node)) {
			out = pad + describe(node, tag) + '\n';
		} else if (HEADINGS.includes(tag)) {
			out = pad + '<' + tag + '> ' + clip(node.innerText) + '\n';
		}
		for (const child of node.childNodes) out += walk(child, depth + 1);
		return out;
	};

	const dialog = topDialog();
	return (dialog ? '=== ACTIVE DIALOG ===\n' : '') + walk(dialog || document.body, 0);
}`

// revealScript scrolls the element bound to this into the middle of the viewport.
const revealScript = `if (this.scrollIntoViewIfNeeded) {
		this.scrollIntoViewIfNeeded();
	} else if (this.scrollIntoView) {
		this.scrollIntoView({ block: "center", inline: "center" });
	}`

// clickScript clicks the nearest clickable ancestor of the target, at most
// five levels up. A label wrapping a radio or checkbox clicks the input.
const clickScript = `function() {
	` + revealScript + `
	const CLICKABLE_TAGS = ["button", "a", "label"];
	const CLICKABLE_ROLES = ["button", "link", "radio", "checkbox"];
	const CLICKABLE_INPUTS = ["button", "submit", "radio", "checkbox"];

	const clickable = (el) => {
		const tag = (el.tagName || "").toLowerCase();
		if (CLICKABLE_TAGS.includes(tag)) return true;
		if (tag === "input" && CLICKABLE_INPUTS.includes((el.type || "").toLowerCase())) return true;
		return !!el.getAttribute && CLICKABLE_ROLES.includes((el.getAttribute("role") || "").toLowerCase());
	};
	const choiceIn = (label) => label && label.querySelector("input[type='radio'],input[type='checkbox']");

	const wrapping = this.closest ? choiceIn(this.closest("label")) : null;
	if (wrapping) {
		wrapping.click();
		return;
	}

	let target = this;
	for (let el = this, depth = 0; el && depth < 5; el = el.parentElement, depth++) {
		if (clickable(el)) {
			target = choiceIn(el.tagName.toLowerCase() === "label" ? el : null) || el;
			break;
		}
	}
	target.click();
}`

// fillScript returns a function body that replaces the element value with
// text and fires input/change so frameworks pick the change up.
func fillScript(text string) string {
	quoted, _ := json.Marshal(text)
	return fmt.Sprintf(`function() {
	`+revealScript+`
	if (this.focus) this.focus();
	this.value = %s;
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
}`, quoted)
}

func scrollScript(dy int) string {
	return fmt.Sprintf(`window.scrollBy({top: %d, behavior: 'smooth'});`, dy)
}

// Selector returns the CSS selector of the element tagged id by the last snapshot.
func Selector(id int) string {
	return fmt.Sprintf("[data-ai-id='%d']", id)
}
