package practice

import "vocabdrill/internal/models"

// Grade maps correctness and the number of hints used into a quality grade
func Grade(isCorrect bool, hintsUsed int) models.Quality {
	switch {
	case !isCorrect:
		return models.QualityIncorrect
	case hintsUsed <= 0:
		return models.QualityPerfect
	case hintsUsed == 1:
		return models.QualityCorrectWithHesitation
	default:
		return models.QualityCorrectWithDifficulty
	}
}

// GradeEvaluation grades a mode evaluation
func GradeEvaluation(e models.Evaluation) models.Quality {
	return Grade(e.IsCorrect, e.HintsUsed)
}
