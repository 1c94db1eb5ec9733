// Package guard provides safety checks applied at the input and output
// boundary of an LLM call: spotlighting isolates untrusted retrieved text
// from trusted instructions, prompt-injection detection flags common
// jailbreak patterns, and PII redaction scrubs identifying data out of
// generated answers before they are returned or persisted.
//
// # Guard Interface
//
// The core Guard interface requires two methods:
//
//   - Name returns a unique identifier for the guard.
//   - Validate checks content and returns a GuardResult indicating whether
//     the content is allowed, along with an optional modified version.
//
// # Built-in Guards
//
//   - PromptInjectionDetector detects common prompt injection patterns using
//     configurable regular expressions.
//   - PIIRedactor detects and redacts personally identifiable information
//     using regex-based patterns.
//   - Spotlighting wraps untrusted content in delimiters to isolate it
//     from trusted instructions, reducing prompt injection effectiveness.
//
// # Registry
//
// The package follows the standard Beluga registry pattern with Register,
// New, and List functions. Built-in guards register themselves via init.
//
// # Usage
//
//	g, err := guard.New("prompt_injection_detector", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := g.Validate(ctx, guard.GuardInput{Content: text, Role: "input"})
package guard
