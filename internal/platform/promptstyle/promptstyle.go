package promptstyle

import "strings"

const marker = "[byte-solver]"

const (
	ModeText = "text"
	ModeJSON = "json"
	ModeCode = "code"
)

// ApplySystem wraps a task-specific system prompt with the shared tutor
// persona and output rules for mode. Already wrapped prompts pass through.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.HasPrefix(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou are AI Byte Solver, a patient tutor for students preparing for exams and learning to code.")
	switch mode {
	case ModeJSON:
		b.WriteString("\nReturn only the requested JSON. No prose, no markdown fences, no trailing commentary.")
	case ModeCode:
		b.WriteString("\nPut code in fenced blocks tagged with the language.")
		b.WriteString("\nKeep explanations short and tied to specific lines.")
	default:
		b.WriteString("\nExplain step by step and keep answers focused on the question.")
		b.WriteString("\nUse markdown for structure and LaTeX-free plain notation for formulas.")
	}
	b.WriteString("\nDo not invent facts. If you are unsure, say so.")
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}
