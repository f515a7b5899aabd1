package studyplan

// LearningType is the review regime derived from a plan objective.
type LearningType string

const (
	LearningProva        LearningType = "prova"
	LearningHabito       LearningType = "habito"
	LearningProfundo     LearningType = "profundo"
	LearningApresentacao LearningType = "apresentacao"
	LearningDefault      LearningType = "default"
)

var learningTypeByObjective = map[string]LearningType{
	"prova":                LearningProva,
	"habito":               LearningHabito,
	"aprendizado_profundo": LearningProfundo,
	"projeto":              LearningApresentacao,
}

// LearningTypeFor maps a declared objective to its learning type.
func LearningTypeFor(objective string) LearningType {
	if lt, ok := learningTypeByObjective[foldKey(objective)]; ok {
		return lt
	}
	return LearningDefault
}

// ReviewFor decides whether a card needs spaced review and after how many days.
// Only habit and exam plans schedule reviews, and only for fundamento and revisao cards.
func ReviewFor(lt LearningType, ct CardType) (bool, *int) {
	if lt != LearningHabito && lt != LearningProva {
		return false, nil
	}
	var days int
	switch ct {
	case CardFundamento:
		days = 2
	case CardRevisao:
		days = 1
	default:
		return false, nil
	}
	return true, &days
}
