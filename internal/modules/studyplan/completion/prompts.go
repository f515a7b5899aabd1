package completion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
	"github.com/yungbote/studyplan-backend/internal/platform/promptstyle"
)

const planSchema = `{"tema": str, "perfil_label": str, "estilo": str, "nivel": int, ` +
	`"objetivo": str, "carga_horas_semana": number, "semanas": int, ` +
	`"plano": [ { "semana": int, "objetivo_semana": str, "topicos": [str], ` +
	`"tarefas": [ { "id": str, "title": str, "type": str, "hours": str, "description": str } ], ` +
	`"referencias": [ {"titulo": str, "url": str} ] } ] }`

const taskExample = `{"id": "task-1", "title": "Estudar conceitos basicos", "type": "teoria", "hours": "4h", ` +
	`"description": "Descricao: escreva 2-4 linhas objetivas sobre o que fazer, objetivo e resultado esperado.\n\n` +
	`Como fazer: liste 3-5 itens curtos separados por virgulas (ex.: rever anotacoes, fazer 3 exercicios, validar respostas)"}`

func systemPrompt() string {
	return promptstyle.ApplySystem(
		"Você retorna APENAS JSON válido (sem markdown). Siga o schema pedido com exatidão de chaves e tipos.",
		"json",
	)
}

func userPrompt(sk studyplan.Skeleton, weeks int, weeklyHours *float64) (string, error) {
	skeletonJSON, err := json.Marshal(sk)
	if err != nil {
		return "", fmt.Errorf("encode skeleton: %w", err)
	}

	hoursText := "Use a carga horária semanal informada no esqueleto."
	if weeklyHours != nil {
		hoursText = fmt.Sprintf("A carga horária semanal informada é %s horas.", strconv.FormatFloat(*weeklyHours, 'f', -1, 64))
	}
	weeksText := "Defina a quantidade de semanas que precisar (não fixe em 4); inclua no campo 'semanas' do JSON um inteiro coerente com a carga horária total."
	if weeks > 0 {
		weeksText = fmt.Sprintf("Planeje em %d semanas, mas ajuste se precisar de mais ou menos para distribuir as horas.", weeks)
	}

	var b strings.Builder
	b.WriteString("Crie um plano de estudo seguindo EXATAMENTE este schema (chaves e tipos):\n")
	b.WriteString(planSchema + "\n")
	b.WriteString("Cada tarefa DEVE seguir o padrão: " + taskExample + ".\n")
	b.WriteString("Importante: NÃO repita o título dentro de 'description' e NÃO inclua '#N' ou '(Título)' na 'description'. ")
	b.WriteString("O cabeçalho '#N (Título)' será exibido pelo frontend.\n")
	b.WriteString("Formato da 'description' exigido (com quebras de linha usando \\n): 'Descricao: ...' (2-4 linhas) + linha em branco + 'Como fazer: item1, item2, item3'.\n")
	b.WriteString("Se estiver perto do limite de tokens, priorize completar o JSON reduzindo conteúdo textual (cada string com até 120 caracteres), nunca deixe chaves sem fechar.\n")
	b.WriteString(hoursText + " " + weeksText + "\n")
	b.WriteString("- Regra 1: PARA CADA semana, a soma das 'hours' das tarefas dessa semana deve ser EXATAMENTE igual à carga_horas_semana (sem faltar nem sobrar).\n")
	b.WriteString("- Regra 2: 'hours' pode ser decimal (ex.: '1.5h') ou hh:mm (ex.: '1:30'); minutos são aceitos. Varie durações entre ~45min e ~3h conforme a carga horária.\n")
	b.WriteString("- Regra 3: NÃO limite a quantidade de tarefas por semana; gere quantas forem necessárias para fechar a carga horária semanal.\n")
	b.WriteString("- Regra 4: gere quantas semanas forem necessárias para cobrir o conteúdo; ajuste 'semanas' e os blocos de 'semana' conforme a carga horária total (carga_horas_semana * semanas).\n")
	b.WriteString("Use o esqueleto a seguir como contexto.\n")
	b.WriteString("Esqueleto: " + string(skeletonJSON))
	return b.String(), nil
}
