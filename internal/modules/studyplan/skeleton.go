package studyplan

import (
	"fmt"
	"strings"
)

var (
	LearningStyles  = []string{"teorico", "pratico", "balanceado", "intensivo"}
	TraitLevels     = []string{"baixa", "media", "alta"}
	KnowledgeLevels = []string{"iniciante", "intermediario", "avancado"}
	Objectives      = []string{"prova", "projeto", "habito", "aprendizado_profundo"}

	// FocusAliases maps the duration-style focus answers onto trait levels.
	FocusAliases = map[string]string{"curto": "baixa", "medio": "media", "longo": "alta"}
)

// EnumSet lists the accepted profile values.
type EnumSet struct {
	Styles       []string          `json:"estilos"`
	Levels       []string          `json:"niveis"`
	Knowledge    []string          `json:"conhecimento"`
	Objectives   []string          `json:"objetivos"`
	FocusAliases map[string]string `json:"nivel_foco_alias"`
}

func Enums() EnumSet {
	return EnumSet{
		Styles:       LearningStyles,
		Levels:       TraitLevels,
		Knowledge:    KnowledgeLevels,
		Objectives:   Objectives,
		FocusAliases: FocusAliases,
	}
}

// Profile is the learner questionnaire.
type Profile struct {
	LearningStyle       string `json:"estilo_aprendizado"`
	DifficultyTolerance string `json:"tolerancia_dificuldade"`
	Focus               string `json:"nivel_foco"`
	Resilience          string `json:"resiliencia_estudo"`
	Knowledge           string `json:"conhecimento_tema"`
	WeeklyHours         int    `json:"tempo_semanal"`
	Objective           string `json:"objetivo_estudo"`
	Topic               string `json:"tema_estudo"`
}

type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s inválido: %s", e.Field, e.Value)
}

// Normalized resolves focus aliases ("curto", "médio", "longo").
func (p Profile) Normalized() Profile {
	focus := foldKey(p.Focus)
	if alias, ok := FocusAliases[focus]; ok {
		p.Focus = alias
	} else {
		p.Focus = focus
	}
	return p
}

func (p Profile) Validate() error {
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"estilo_aprendizado", p.LearningStyle, LearningStyles},
		{"tolerancia_dificuldade", p.DifficultyTolerance, TraitLevels},
		{"nivel_foco", p.Focus, TraitLevels},
		{"resiliencia_estudo", p.Resilience, TraitLevels},
		{"conhecimento_tema", p.Knowledge, KnowledgeLevels},
		{"objetivo_estudo", p.Objective, Objectives},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return &ValidationError{Field: c.field, Value: c.value}
		}
	}
	if p.WeeklyHours < 1 || p.WeeklyHours > 168 {
		return &ValidationError{Field: "tempo_semanal", Value: fmt.Sprint(p.WeeklyHours)}
	}
	if strings.TrimSpace(p.Topic) == "" {
		return &ValidationError{Field: "tema_estudo", Value: p.Topic}
	}
	return nil
}

// LabelProfile assigns the behavioral label: a style letter (T, P, B or I) plus a
// 1-3 intensity from weekly time, shifted by the trait answers.
func LabelProfile(p Profile) string {
	var base string
	switch p.LearningStyle {
	case "teorico":
		base = "T"
	case "pratico":
		base = "P"
	case "balanceado":
		base = "B"
	default:
		base = "I"
	}

	level := 3
	switch {
	case p.WeeklyHours <= 7:
		level = 1
	case p.WeeklyHours <= 14:
		level = 2
	}
	for _, v := range []string{p.DifficultyTolerance, p.Focus, p.Resilience, p.Knowledge} {
		switch v {
		case "alta", "avancado":
			level++
		case "baixa", "iniciante":
			level--
		}
	}
	return fmt.Sprintf("%s%d", base, min(3, max(1, level)))
}

// Classification is the label assigned to a profile and the answers behind it.
type Classification struct {
	Label       string   `json:"label"`
	Probability float64  `json:"probability"`
	Explanation []string `json:"explanation"`
}

func Classify(p Profile) Classification {
	return Classification{
		Label:       LabelProfile(p),
		Probability: 1,
		Explanation: []string{
			"Estilo de Aprendizado: " + p.LearningStyle,
			fmt.Sprintf("Tempo semanal: %dh", p.WeeklyHours),
			"Tolerância a desafios: " + p.DifficultyTolerance,
			"Foco/Disciplina: " + p.Focus,
			"Resiliência: " + p.Resilience,
			"Nível de conhecimento: " + p.Knowledge,
			"Objetivo do estudo: " + p.Objective,
		},
	}
}

// Block is one slice of the weekly time in a skeleton.
type Block struct {
	Kind        string  `json:"tipo"`
	Description string  `json:"descricao"`
	Hours       float64 `json:"duracao_h"`
}

// Skeleton seeds the plan prompt. It is not modified after BuildSkeleton returns.
type Skeleton struct {
	Topic       string  `json:"tema"`
	Label       string  `json:"label"`
	Style       string  `json:"estilo"`
	Level       int     `json:"nivel"`
	Objective   string  `json:"objetivo"`
	WeeklyHours float64 `json:"duracao_semanal_horas"`
	Structure   []Block `json:"estrutura"`
}

var weeklyHoursByLevel = map[int]float64{1: 3, 2: 7, 3: 14}

// BuildSkeleton derives the weekly structure for a label such as "B2".
// Unknown levels fall back to level 2.
func BuildSkeleton(label, objective, topic string) (Skeleton, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	if len(label) < 2 {
		return Skeleton{}, &ValidationError{Field: "label", Value: label}
	}
	if label[1] < '0' || label[1] > '9' {
		return Skeleton{}, &ValidationError{Field: "label", Value: label}
	}
	style := label[:1]
	level := int(label[1] - '0')
	hours, ok := weeklyHoursByLevel[level]
	if !ok {
		hours = weeklyHoursByLevel[2]
	}

	var blocks []Block
	switch style {
	case "T":
		blocks = []Block{
			{"leitura", "Fundamentos e teoria", hours * 0.9},
			{"resumo", "Mapeamento e resumos", hours * 0.1},
		}
	case "P":
		blocks = []Block{
			{"pratica", "Exercícios e projetos", hours * 0.9},
			{"leitura", "Referência rápida", hours * 0.1},
		}
	case "B":
		blocks = []Block{
			{"leitura", "Conceitos chave", hours * 0.5},
			{"pratica", "Aplicações práticas", hours * 0.5},
		}
	default:
		blocks = []Block{
			{"blocos_diarios", "Blocos curtos com revisão ativa", hours},
		}
	}

	switch objective {
	case "prova":
		blocks = append(blocks, Block{"simulados", "Questões e revisões focadas", hours * 0.2})
	case "projeto":
		blocks = append(blocks, Block{"entregavel", "Tarefas práticas com entregáveis", hours * 0.4})
	case "habito":
		blocks = append(blocks, Block{"consistencia", "Micro-hábitos diários", hours * 0.15})
	default:
		blocks = append(blocks, Block{"imersao", "Estudos dirigidos e exploração", hours * 0.4})
	}

	return Skeleton{
		Topic:       topic,
		Label:       label,
		Style:       style,
		Level:       level,
		Objective:   objective,
		WeeklyHours: hours,
		Structure:   blocks,
	}, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
