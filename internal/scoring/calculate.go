package scoring

import "math"

// Ratings maps criterion id to the raw rating the evaluator entered.
// Criteria left unrated are simply absent; they contribute nothing to the
// weighted sums and shrink the confidence completeness factor.
type Ratings map[string]float64

// Calculate resolves the rubric by id and scores the given ratings.
func (reg *Registry) Calculate(ratings Ratings, rubricID string) (*ScoreSet, error) {
	rubric, err := reg.Get(rubricID)
	if err != nil {
		return nil, err
	}
	return CalculateWithRubric(ratings, rubric), nil
}

// CalculateWithRubric turns a criteria-rating map into a ScoreSet.
//
// Each rated criterion contributes effective_rating * weight to its
// category sum. Dimension scores are rounded to 2 decimals for display,
// but the final score and the priority classification both use the
// unrounded sums.
func CalculateWithRubric(ratings Ratings, rubric *Rubric) *ScoreSet {
	var valueScore, riskScore float64
	valueBreakdown := map[string]float64{}
	riskBreakdown := map[string]float64{}

	for _, c := range rubric.Criteria {
		rating, ok := ratings[c.ID]
		if !ok {
			continue
		}

		weighted := c.Effective(rating) * c.Weight
		switch c.Category {
		case CategoryBusinessValue:
			valueScore += weighted
			valueBreakdown[c.ID] = rating
		case CategoryRiskFactor:
			riskScore += weighted
			riskBreakdown[c.ID] = rating
		}
	}

	priority, _ := rubric.classify(valueScore, riskScore)

	return &ScoreSet{
		Overall: Overall{
			FinalScore: round2(valueScore - riskScore),
			Priority:   priority,
			Confidence: confidence(ratings, rubric),
		},
		Dimensions: map[string]Dimension{
			"value": {Score: round2(valueScore), Breakdown: valueBreakdown},
			"risk":  {Score: round2(riskScore), Breakdown: riskBreakdown},
		},
	}
}

// confidence scores how trustworthy a rating set is: complete rating
// sheets rate higher, all-extreme answers rate slightly lower.
// Zero when nothing was rated.
func confidence(ratings Ratings, rubric *Rubric) float64 {
	if len(rubric.Criteria) == 0 {
		return 0
	}

	rated := 0
	extremeness := 0.0
	for _, c := range rubric.Criteria {
		rating, ok := ratings[c.ID]
		if !ok {
			continue
		}
		rated++
		halfRange := (c.Max - c.Min) / 2
		if halfRange > 0 {
			extremeness += math.Abs(rating-c.Midpoint()) / halfRange
		}
	}
	if rated == 0 {
		return 0
	}
	extremeness /= float64(rated)

	completeness := float64(rated) / float64(len(rubric.Criteria))
	return round2(math.Min(completeness*(1-extremeness*0.2), 1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
