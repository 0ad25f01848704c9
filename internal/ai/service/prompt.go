package service

import (
	"fmt"
	"strings"
)

// FixPrompt asks the model for fixed code plus per-change metadata in a
// fixed JSON shape.
func FixPrompt(code, language, issue string) string {
	issueContext := ""
	if strings.TrimSpace(issue) != "" {
		issueContext = "\n\nUser reported issue: " + issue
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s code reviewer and fixer. ", language)
	b.WriteString("Analyze the provided code, identify any issues (syntax errors, bugs, style problems, best practice violations), and provide a fixed version.\n\n")
	b.WriteString(`IMPORTANT: You must respond with a valid JSON object in the following exact format:
{
  "fixedCode": "the complete fixed code here",
  "explanation": "a brief overall explanation of what was fixed",
  "suggestions": ["suggestion 1", "suggestion 2"],
  "changes": [
    {
      "lineStart": 1,
      "lineEnd": 1,
      "charStart": 10,
      "charEnd": 10,
      "oldCode": "original code snippet",
      "newCode": "new code snippet",
      "explanation": "why this change was made",
      "comment": "detailed explanation for tooltip/hover"
    }
  ]
}

Rules:
1. fixedCode: Return the complete fixed code as a single string (preserve line breaks with \n)
2. explanation: A brief summary (1-2 sentences) of the main fixes
3. suggestions: Array of general improvement suggestions (can be empty)
4. changes: Array of change objects for each modification
   - lineStart/lineEnd: Line numbers (1-indexed) in the fixed code where the change occurs
   - charStart/charEnd: Character positions (0-indexed) within the line
   - oldCode: The original code that was changed
   - newCode: The new code that replaces it, exactly as it appears in fixedCode (empty when code was removed)
   - explanation: Brief reason for the change
   - comment: Detailed explanation for UI tooltips

`)
	fmt.Fprintf(&b, "Code to fix:%s\n\n```%s\n%s\n```\n\n", issueContext, language, code)
	b.WriteString("Return ONLY the JSON response with the fixed code and detailed changes. Do not wrap the JSON in markdown code blocks.")
	return b.String()
}

// ExplainPrompt asks for an explanation of code.
func ExplainPrompt(code, language string) string {
	return fmt.Sprintf("Explain the following %s code in detail, including what it does, how it works, and any important concepts:\n\n%s\n\n"+
		`Respond with a JSON object: {"explanation": string, "concepts": [string], "complexity": string}`, language, code)
}

// OptimizePrompt asks for an optimized rewrite focused on optimizationType.
func OptimizePrompt(code, language, optimizationType string) string {
	return fmt.Sprintf("Optimize the following %s code for %s. Provide the optimized code and explain the improvements:\n\n%s\n\n"+
		`Respond with a JSON object: {"optimizedCode": string, "explanation": string, "improvements": [string]}`, language, optimizationType, code)
}

// GeneratePrompt asks for new code from a description.
func GeneratePrompt(description, language string) string {
	return fmt.Sprintf("Generate %s code based on the following description:\n\n%s\n\n"+
		`Respond with a JSON object: {"code": string, "explanation": string}`, language, description)
}
