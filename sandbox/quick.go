package sandbox

// QuickEval evaluates a single snippet of Dana source in a fresh
// throwaway Sandbox and shuts it down immediately, for callers that don't
// need a persistent Context across multiple calls — a one-off expression
// evaluator, a test helper, or a host-process embedding that never reuses
// bindings.
func QuickEval(source string) *ExecutionResult {
	sb := New(Options{})
	defer sb.Shutdown()
	return sb.Eval(source, "")
}

// QuickRun loads and executes a single .na file in a fresh throwaway
// Sandbox, mirroring QuickEval for the file-path case.
func QuickRun(path string) *ExecutionResult {
	sb := New(Options{})
	defer sb.Shutdown()
	return sb.Run(path)
}
