package rules

import (
	"strings"

	"genlens/internal/structure"
)

// Tree predicates walk the parsed structural tree. They declare CapTree and
// are skipped when only the pattern view is available.

// Default name sets for the shallow taint heuristic. Catalog params
// ("sources", "sinks", "sanitizers", "fallible") override them.
var (
	defaultInputSources = []string{"input", "raw_input", "gets", "readline", "read_input", "prompt"}
	defaultSinks        = []string{
		"run_query", "execute", "execute_query", "query", "exec",
		"eval", "system", "popen", "call", "check_output",
	}
	defaultSanitizers = []string{"sanitize", "sanitize_input", "escape", "validate", "clean", "strip", "quote"}
	defaultFallible   = []string{"open", "connect", "fetch", "request", "send", "recv", "read", "write", "load"}
)

// matchGlobalMutableState flags assignments at the outermost scope.
func matchGlobalMutableState(src *structure.Source, _ Params) []Match {
	lang := src.Language()
	kinds := assignmentKinds(lang)
	if len(kinds) == 0 {
		return nil
	}
	scopes := scopeKinds(lang)

	var matches []Match
	for _, n := range src.FindNodes(kinds...) {
		if hasAncestorKind(n, scopes) {
			continue
		}
		matches = append(matches, Match{
			Span:   n.Span(),
			Detail: assignTargetName(n, lang),
		})
	}
	return matches
}

// matchSanitizeInputs flags sink calls fed by an external-input value with no
// intervening sanitization. Taint tracking is deliberately shallow: a value
// read from an input source taints its identifier for the same statement and
// the immediately following one, nothing deeper.
func matchSanitizeInputs(src *structure.Source, params Params) []Match {
	lang := src.Language()
	if len(callKinds(lang)) == 0 {
		return nil
	}

	sources := nameSet(params.Strings("sources"), defaultInputSources)
	sinks := nameSet(params.Strings("sinks"), defaultSinks)
	sanitizers := nameSet(params.Strings("sanitizers"), defaultSanitizers)

	root, ok := src.Root()
	if !ok {
		return nil
	}

	var matches []Match

	// Each statement sequence (module body, every function body) is tainted
	// independently; flow between scopes is out of the heuristic's reach.
	for _, stmts := range statementSequences(src, root) {
		tainted := map[string]int{} // identifier -> statement index of taint
		cleaned := map[string]bool{}

		for i, stmt := range stmts {
			// Taint from assignments whose right side reads an input source.
			for _, a := range nodesIn(stmt, assignmentKinds(lang)) {
				if target := assignTargetName(a, lang); target != "" {
					if containsCallTo(a, lang, sources) {
						tainted[target] = i
						cleaned[target] = false
					}
				}
			}

			for _, call := range nodesIn(stmt, callKinds(lang)) {
				base := baseCallName(call, lang)

				if sanitizers[base] {
					for _, id := range argumentIdents(call, lang) {
						cleaned[id] = true
					}
					continue
				}

				if !sinks[base] {
					continue
				}

				// Input value nested directly in the sink's arguments.
				if containsNestedCallTo(call, lang, sources) {
					matches = append(matches, Match{Span: call.Span(), Detail: base})
					continue
				}

				// Tainted identifier from this or the previous statement.
				for _, id := range argumentIdents(call, lang) {
					ti, isTainted := tainted[id]
					if isTainted && i-ti <= 1 && !cleaned[id] {
						matches = append(matches, Match{Span: call.Span(), Detail: base})
						break
					}
				}
			}
		}
	}

	return matches
}

// matchRequireErrorHandling flags calls to fallible operations with no
// enclosing error-handling construct. Languages without a try construct are
// out of the rule's scope.
func matchRequireErrorHandling(src *structure.Source, params Params) []Match {
	lang := src.Language()
	tries := tryKinds(lang)
	if len(tries) == 0 {
		return nil
	}
	fallible := nameSet(params.Strings("fallible"), defaultFallible)

	var matches []Match
	for _, call := range src.FindNodes(callKinds(lang)...) {
		base := baseCallName(call, lang)
		if !fallible[base] {
			continue
		}
		if hasAncestorKind(call, tries) {
			continue
		}
		matches = append(matches, Match{Span: call.Span(), Detail: base})
	}
	return matches
}

// matchMaxFunctionLength flags function definitions whose body spans more
// lines than the configured limit (param "max_lines", default 50).
func matchMaxFunctionLength(src *structure.Source, params Params) []Match {
	limit := params.Int("max_lines", 50)

	var matches []Match
	for _, fn := range src.FindNodes(functionKinds(src.Language())...) {
		span := fn.Span()
		if span.EndLine-span.StartLine+1 <= limit {
			continue
		}
		name := fn.ChildByField("name").Text()
		if name == "" {
			name = "<anonymous>"
		}
		matches = append(matches, Match{
			Span:   structure.Span{StartLine: span.StartLine, StartCol: span.StartCol, EndLine: span.StartLine, EndCol: span.StartCol},
			Detail: name,
		})
	}
	return matches
}

// matchRequireTypeHints flags named functions whose signatures omit type
// annotations: one finding for a missing return type and one per
// unannotated parameter, anchored at the parameter itself.
func matchRequireTypeHints(src *structure.Source, params Params) []Match {
	kinds := annotatedFunctionKinds(src.Language())
	if len(kinds) == 0 {
		return nil
	}

	var matches []Match
	for _, fn := range src.FindNodes(kinds...) {
		name := fn.ChildByField("name").Text()
		if name == "" {
			name = "<anonymous>"
		}
		if !fn.ChildByField("return_type").IsValid() {
			span := fn.Span()
			matches = append(matches, Match{
				Span:   structure.Span{StartLine: span.StartLine, StartCol: span.StartCol, EndLine: span.StartLine, EndCol: span.StartCol},
				Detail: "function " + name + " has no return type",
			})
		}
		for _, p := range unannotatedParams(fn, src.Language()) {
			span := p.node.Span()
			matches = append(matches, Match{
				Span:   structure.Span{StartLine: span.StartLine, StartCol: span.StartCol, EndLine: span.StartLine, EndCol: span.StartCol},
				Detail: "parameter " + p.name + " of " + name + " has no type annotation",
			})
		}
	}
	return matches
}

// ---- tree helpers ----

func nameSet(override, def []string) map[string]bool {
	names := override
	if len(names) == 0 {
		names = def
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

func hasAncestorKind(n structure.Node, kinds []string) bool {
	for p := n.Parent(); p.IsValid(); p = p.Parent() {
		for _, k := range kinds {
			if p.Kind() == k {
				return true
			}
		}
	}
	return false
}

// nodesIn collects descendant nodes (including n itself) of the given kinds,
// in document order.
func nodesIn(n structure.Node, kinds []string) []structure.Node {
	var out []structure.Node
	var walk func(structure.Node)
	walk = func(cur structure.Node) {
		for _, k := range kinds {
			if cur.Kind() == k {
				out = append(out, cur)
				break
			}
		}
		for i := 0; i < cur.ChildCount(); i++ {
			walk(cur.Child(i))
		}
	}
	walk(n)
	return out
}

// statementSequences returns the statement list of the module scope and of
// every function body. Anonymous token nodes (";", ":", keywords) are
// recognizable by kind == text and filtered out.
func statementSequences(src *structure.Source, root structure.Node) [][]structure.Node {
	seqs := [][]structure.Node{namedChildren(root)}

	for _, fn := range src.FindNodes(functionKinds(src.Language())...) {
		body := fn.ChildByField("body")
		if !body.IsValid() {
			continue
		}
		seqs = append(seqs, namedChildren(body))
	}
	return seqs
}

type paramInfo struct {
	name string
	node structure.Node
}

// unannotatedParams lists the parameters of fn that carry no type
// annotation. Python receivers (self, cls) are exempt; typed forms
// (typed_parameter, required_parameter with a type field) are skipped.
func unannotatedParams(fn structure.Node, lang structure.Language) []paramInfo {
	list := fn.ChildByField("parameters")
	if !list.IsValid() {
		return nil
	}
	var out []paramInfo
	for _, p := range namedChildren(list) {
		switch lang {
		case structure.LangPython:
			switch p.Kind() {
			case "identifier":
				if n := p.Text(); n != "self" && n != "cls" {
					out = append(out, paramInfo{name: n, node: p})
				}
			case "default_parameter":
				out = append(out, paramInfo{name: p.ChildByField("name").Text(), node: p})
			}
		case structure.LangTypeScript, structure.LangTSX:
			if p.Kind() != "required_parameter" && p.Kind() != "optional_parameter" {
				continue
			}
			if p.ChildByField("type").IsValid() {
				continue
			}
			out = append(out, paramInfo{name: p.ChildByField("pattern").Text(), node: p})
		}
	}
	return out
}

func namedChildren(n structure.Node) []structure.Node {
	var out []structure.Node
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == c.Text() {
			continue // anonymous token node
		}
		out = append(out, c)
	}
	return out
}

// baseCallName extracts the called name, reduced to its last dotted segment
// so "os.system" and "db.cursor.execute" match "system" and "execute".
func baseCallName(call structure.Node, lang structure.Language) string {
	fn := call.ChildByField("function")
	if !fn.IsValid() {
		fn = call.ChildByField("name")
	}
	if !fn.IsValid() && call.ChildCount() > 0 {
		fn = call.Child(0)
	}
	text := fn.Text()
	if idx := strings.LastIndexByte(text, '.'); idx >= 0 {
		text = text[idx+1:]
	}
	return strings.ToLower(strings.TrimSpace(text))
}

// argumentIdents collects identifiers appearing in a call's argument list.
func argumentIdents(call structure.Node, lang structure.Language) []string {
	args := call.ChildByField("arguments")
	if !args.IsValid() {
		args = call
	}
	idKinds := identifierKinds(lang)

	var idents []string
	for _, id := range nodesIn(args, idKinds) {
		idents = append(idents, id.Text())
	}
	return idents
}

// containsCallTo reports whether the subtree has a call to one of names.
func containsCallTo(n structure.Node, lang structure.Language, names map[string]bool) bool {
	for _, call := range nodesIn(n, callKinds(lang)) {
		if names[baseCallName(call, lang)] {
			return true
		}
	}
	return false
}

// containsNestedCallTo is containsCallTo restricted to strict descendants of
// a call's argument list.
func containsNestedCallTo(call structure.Node, lang structure.Language, names map[string]bool) bool {
	args := call.ChildByField("arguments")
	if !args.IsValid() {
		return false
	}
	return containsCallTo(args, lang, names)
}

// assignTargetName returns the identifier being assigned, or "" when the
// target is not a plain identifier.
func assignTargetName(a structure.Node, lang structure.Language) string {
	for _, field := range []string{"left", "name"} {
		t := a.ChildByField(field)
		if t.IsValid() {
			ids := nodesIn(t, identifierKinds(lang))
			if len(ids) > 0 {
				return ids[0].Text()
			}
		}
	}
	// Declaration forms (var_declaration, lexical_declaration) nest the
	// declarator one level down.
	ids := nodesIn(a, identifierKinds(lang))
	if len(ids) > 0 {
		return ids[0].Text()
	}
	return ""
}
