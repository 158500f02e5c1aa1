package rules

import "genlens/internal/structure"

// Per-language grammar node kind tables used by the tree predicates.
// Kind names come from the respective tree-sitter grammars.

// functionKinds returns the node types that represent function definitions.
func functionKinds(lang structure.Language) []string {
	switch lang {
	case structure.LangGo:
		return []string{"function_declaration", "method_declaration", "func_literal"}
	case structure.LangJavaScript, structure.LangTypeScript, structure.LangTSX:
		return []string{"function_declaration", "function_expression", "arrow_function", "method_definition", "generator_function_declaration"}
	case structure.LangPython:
		return []string{"function_definition", "lambda"}
	case structure.LangRust:
		return []string{"function_item", "closure_expression"}
	case structure.LangJava:
		return []string{"method_declaration", "constructor_declaration", "lambda_expression"}
	case structure.LangKotlin:
		return []string{"function_declaration", "lambda_literal", "anonymous_function"}
	default:
		return nil
	}
}

// scopeKinds returns node types that open a nested scope. An assignment with
// none of these as ancestor sits at the outermost (module) scope.
func scopeKinds(lang structure.Language) []string {
	kinds := functionKinds(lang)
	switch lang {
	case structure.LangPython:
		kinds = append(kinds, "class_definition")
	case structure.LangJavaScript, structure.LangTypeScript, structure.LangTSX:
		kinds = append(kinds, "class_declaration")
	case structure.LangRust:
		kinds = append(kinds, "impl_item", "trait_item")
	case structure.LangJava:
		kinds = append(kinds, "class_declaration", "interface_declaration")
	case structure.LangKotlin:
		kinds = append(kinds, "class_declaration", "object_declaration")
	}
	return kinds
}

// assignmentKinds returns node types for mutable-state assignment at any
// scope. Languages whose outermost scope cannot hold plain assignments
// (java, kotlin) return nil and the global-state rule yields no matches.
func assignmentKinds(lang structure.Language) []string {
	switch lang {
	case structure.LangPython:
		return []string{"assignment", "augmented_assignment"}
	case structure.LangGo:
		return []string{"var_declaration", "short_var_declaration", "assignment_statement"}
	case structure.LangJavaScript, structure.LangTypeScript, structure.LangTSX:
		return []string{"variable_declaration", "lexical_declaration", "assignment_expression"}
	case structure.LangRust:
		return []string{"static_item", "let_declaration", "assignment_expression"}
	default:
		return nil
	}
}

// callKinds returns the node types for call sites.
func callKinds(lang structure.Language) []string {
	switch lang {
	case structure.LangPython:
		return []string{"call"}
	case structure.LangGo, structure.LangJavaScript, structure.LangTypeScript,
		structure.LangTSX, structure.LangRust, structure.LangKotlin:
		return []string{"call_expression"}
	case structure.LangJava:
		return []string{"method_invocation"}
	default:
		return nil
	}
}

// tryKinds returns node types for error-handling constructs. Empty for
// languages (go, rust) whose idiom is value-based error handling; the
// require-error-handling rule does not apply there.
func tryKinds(lang structure.Language) []string {
	switch lang {
	case structure.LangPython:
		return []string{"try_statement"}
	case structure.LangJavaScript, structure.LangTypeScript, structure.LangTSX:
		return []string{"try_statement"}
	case structure.LangJava:
		return []string{"try_statement", "try_with_resources_statement"}
	case structure.LangKotlin:
		return []string{"try_expression"}
	default:
		return nil
	}
}

// annotatedFunctionKinds returns the named-function node types whose
// signatures can carry type annotations. Empty for languages where the
// type system makes annotations mandatory; the require-type-hints rule
// does not apply there.
func annotatedFunctionKinds(lang structure.Language) []string {
	switch lang {
	case structure.LangPython:
		return []string{"function_definition"}
	case structure.LangTypeScript, structure.LangTSX:
		return []string{"function_declaration", "method_definition"}
	default:
		return nil
	}
}

// identifierKinds returns the node types for plain identifiers.
func identifierKinds(lang structure.Language) []string {
	if lang == structure.LangKotlin {
		return []string{"simple_identifier"}
	}
	return []string{"identifier"}
}
