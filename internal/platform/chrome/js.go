package chrome

// Functions run with the element bound to this via Runtime.callFunctionOn.

const jsAttribute = `function(name) {
	if (name === "value" && "value" in this && typeof this.value === "string") {
		return {ok: true, value: this.value};
	}
	if (!this.hasAttribute(name)) {
		return {ok: false, value: ""};
	}
	return {ok: true, value: this.getAttribute(name)};
}`

const jsText = `function() {
	return this.textContent || "";
}`

const jsVisible = `function() {
	let el = this;
	if (el.tagName === "OPTION") {
		el = el.closest("select") || el;
	}
	if (!el.isConnected) {
		return false;
	}
	if (el.tagName === "INPUT" && el.type === "hidden") {
		return false;
	}
	const style = window.getComputedStyle(el);
	if (style.display === "none" || style.visibility === "hidden") {
		return false;
	}
	return el.getClientRects().length > 0;
}`

const jsSelected = `function() {
	if (this.tagName === "OPTION") {
		return this.selected;
	}
	return !!this.checked;
}`

const jsSelectOption = `function() {
	const select = this.closest("select");
	if (select && select.multiple) {
		this.selected = !this.selected;
	} else {
		this.selected = true;
	}
	if (select) {
		select.dispatchEvent(new Event("input", {bubbles: true}));
		select.dispatchEvent(new Event("change", {bubbles: true}));
	}
}`

const jsClear = `function() {
	if ("value" in this) {
		this.value = "";
	} else {
		this.textContent = "";
	}
	this.dispatchEvent(new Event("input", {bubbles: true}));
	this.dispatchEvent(new Event("change", {bubbles: true}));
}`
