package promptstyle

import "strings"

const marker = "STUDYPLAN_PROMPT_STYLE_V1"

// ApplySystem prepends a short guidance block to a system prompt. It is applied
// at most once; mode "json" adds the single-object output rule.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nVocê é um assistente cuidadoso que monta planos de estudo.")
	b.WriteString("\nSiga as instruções do sistema e do usuário com precisão.")
	b.WriteString("\nNão adicione análises nem comentários extras.")
	if mode == "json" {
		b.WriteString("\nRetorne um único objeto JSON, sem markdown, com exatamente as chaves do schema.")
	} else {
		b.WriteString("\nSeja conciso e estruturado.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
