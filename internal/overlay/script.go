// internal/overlay/script.go
package overlay

import "fmt"

// selectionBinding is the page-side function name the instrumentation calls
// when the user clicks an element.
const selectionBinding = "__siteforgeSelect"

// accessProbeScript checks whether the document is scriptable at all. A
// cross-origin frame throws on body access; the probe swallows that and
// reports denial instead.
const accessProbeScript = `(function () {
	try {
		return document.body !== null;
	} catch (e) {
		return false;
	}
})()`

// overlayStyleScript installs the hover and selection affordances once per
// document. The badge text comes from the data-component-type attribute the
// hover handler sets.
const overlayStyleScript = `(function () {
	if (document.getElementById('siteforge-overlay-style')) { return; }
	var style = document.createElement('style');
	style.id = 'siteforge-overlay-style';
	style.textContent = [
		'.siteforge-highlight { outline: 2px dashed #3b82f6 !important; outline-offset: 2px; cursor: pointer; position: relative; }',
		'.siteforge-highlight::before { content: attr(data-component-type); position: absolute; top: -22px; left: 0;',
		'  background: #3b82f6; color: #fff; font: 11px sans-serif; padding: 2px 6px; border-radius: 3px; z-index: 2147483647; }',
		'.siteforge-selected { outline: 2px solid #f59e0b !important; outline-offset: 2px; }'
	].join('\n');
	document.head.appendChild(style);
})()`

// instrumentationScriptTemplate wires hover and click handlers onto the
// meaningful elements of the current document. Handlers stay attached to
// this document only; navigation discards them with the document itself.
// Placeholders: binding name, min width, min height.
const instrumentationScriptTemplate = `(function () {
	if (document.__siteforgeInstrumented) { return; }
	document.__siteforgeInstrumented = true;

	var TYPE_MAP = {
		header: 'header', nav: 'navigation', footer: 'footer',
		section: 'section', article: 'article', aside: 'section',
		h1: 'heading', h2: 'heading', h3: 'heading', h4: 'heading', h5: 'heading', h6: 'heading',
		p: 'paragraph', span: 'text', div: 'container',
		img: 'image', a: 'link', button: 'button',
		form: 'form', input: 'form-element', textarea: 'form-element', select: 'form-element',
		ul: 'list', ol: 'list', li: 'list'
	};
	var MEANINGFUL = 'header, nav, main, footer, section, article, aside, ' +
		'h1, h2, h3, h4, h5, h6, p, span, div, img, a, button, ' +
		'form, input, textarea, select, ul, ol, li';
	var STYLE_PROPS = ['backgroundColor', 'color', 'fontSize', 'fontFamily',
		'padding', 'margin', 'border', 'borderRadius',
		'display', 'position', 'width', 'height'];

	function typeFor(el) {
		return TYPE_MAP[el.tagName.toLowerCase()] || 'element';
	}

	function selectorFor(el) {
		if (el.id) { return '#' + el.id; }
		if (el.className && typeof el.className === 'string' && el.className.trim()) {
			return '.' + el.className.trim().split(/\s+/)[0];
		}
		var tag = el.tagName.toLowerCase();
		if (!el.parentElement) { return tag; }
		var index = Array.prototype.indexOf.call(el.parentElement.children, el) + 1;
		return tag + ':nth-child(' + index + ')';
	}

	function selectable(el) {
		var rect = el.getBoundingClientRect();
		if (rect.width < %d || rect.height < %d) { return false; }
		var cs = window.getComputedStyle(el);
		return cs.display !== 'none' && cs.visibility !== 'hidden';
	}

	var hovered = null;
	var selected = null;

	function onEnter(ev) {
		var el = ev.currentTarget;
		if (hovered && hovered !== el) {
			hovered.classList.remove('siteforge-highlight');
			hovered.removeAttribute('data-component-type');
		}
		hovered = el;
		el.setAttribute('data-component-type', typeFor(el));
		el.classList.add('siteforge-highlight');
	}

	function onLeave(ev) {
		var el = ev.currentTarget;
		el.classList.remove('siteforge-highlight');
		el.removeAttribute('data-component-type');
		if (hovered === el) { hovered = null; }
	}

	function onClick(ev) {
		ev.preventDefault();
		ev.stopPropagation();
		var el = ev.currentTarget;
		if (selected && selected !== el) {
			selected.classList.remove('siteforge-selected');
		}
		selected = el;
		el.classList.add('siteforge-selected');

		var cs = window.getComputedStyle(el);
		var styles = {};
		for (var i = 0; i < STYLE_PROPS.length; i++) {
			styles[STYLE_PROPS[i]] = cs[STYLE_PROPS[i]];
		}
		var attributes = {};
		for (var j = 0; j < el.attributes.length; j++) {
			attributes[el.attributes[j].name] = el.attributes[j].value;
		}
		var rect = el.getBoundingClientRect();
		var parent = el.parentElement;

		window.%s(JSON.stringify({
			tag: el.tagName.toLowerCase(),
			componentType: typeFor(el),
			text: (el.textContent || '').trim().slice(0, 200),
			styles: styles,
			attributes: attributes,
			selector: selectorFor(el),
			elementIndex: parent ? Array.prototype.indexOf.call(parent.children, el) : 0,
			parentTag: parent ? parent.tagName.toLowerCase() : 'body',
			rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height }
		}));
	}

	var elements = document.querySelectorAll(MEANINGFUL);
	for (var k = 0; k < elements.length; k++) {
		var el = elements[k];
		if (!selectable(el)) { continue; }
		el.addEventListener('mouseenter', onEnter);
		el.addEventListener('mouseleave', onLeave);
		el.addEventListener('click', onClick);
	}
})()`

// noticeScriptTemplate renders the non-blocking access denial banner.
// Placeholder: message text (pre-escaped).
const noticeScriptTemplate = `(function () {
	if (document.getElementById('siteforge-overlay-notice')) { return; }
	var notice = document.createElement('div');
	notice.id = 'siteforge-overlay-notice';
	notice.textContent = %q;
	notice.style.cssText = 'position: fixed; bottom: 16px; right: 16px; background: #1f2937; ' +
		'color: #f9fafb; font: 13px sans-serif; padding: 10px 14px; border-radius: 6px; z-index: 2147483647;';
	document.body.appendChild(notice);
})()`

func instrumentationScript(minWidth, minHeight int) string {
	return fmt.Sprintf(instrumentationScriptTemplate, minWidth, minHeight, selectionBinding)
}

func noticeScript(message string) string {
	return fmt.Sprintf(noticeScriptTemplate, message)
}
