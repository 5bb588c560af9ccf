package service

import (
	"slices"
	"sort"
	"strings"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

const (
	maxRecommendations     = 6
	minRelevanceScore      = 0.2
	symptomMatchWeight     = 0.4
	conditionMatchWeight   = 0.5
	severeLifestylePenalty = 0.7
)

// RemedyService ranks catalog remedies against extracted entities
type RemedyService struct {
	catalog []model.Remedy
}

// NewRemedyService creates a RemedyService over the built-in catalog
func NewRemedyService() *RemedyService {
	return &RemedyService{catalog: remedyCatalog}
}

// Recommend returns at most six remedies ordered by descending relevance.
// Remedies without any symptom or condition match are never returned, and
// every returned score is strictly above 0.2.
func (s *RemedyService) Recommend(symptoms, conditions []string, severity *model.SeverityBand) []model.RemedyRecommendation {
	recommendations := []model.RemedyRecommendation{}

	for _, remedy := range s.catalog {
		symptomMatches := matchTargets(symptoms, remedy.TargetSymptoms)
		conditionMatches := matchTargets(conditions, remedy.TargetConditions)
		if len(symptomMatches) == 0 && len(conditionMatches) == 0 {
			continue
		}

		score := float64(len(symptomMatches))*symptomMatchWeight +
			float64(len(conditionMatches))*conditionMatchWeight +
			remedy.EvidenceLevel.Bonus()

		if severity != nil && *severity == model.SeveritySevere && remedy.Type == model.RemedyTypeLifestyle {
			score *= severeLifestylePenalty
		}

		if score <= minRelevanceScore {
			continue
		}

		recommendations = append(recommendations, model.RemedyRecommendation{
			Remedy:         cloneRemedy(remedy),
			RelevanceScore: score,
			Reasoning:      buildReasoning(symptomMatches, conditionMatches),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].RelevanceScore > recommendations[j].RelevanceScore
	})

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

// Remedy looks up a catalog entry by id
func (s *RemedyService) Remedy(id string) (model.Remedy, bool) {
	for _, remedy := range s.catalog {
		if remedy.ID == id {
			return cloneRemedy(remedy), true
		}
	}
	return model.Remedy{}, false
}

// ByType returns every remedy of the given type in catalog order
func (s *RemedyService) ByType(t model.RemedyType) []model.Remedy {
	out := []model.Remedy{}
	for _, remedy := range s.catalog {
		if remedy.Type == t {
			out = append(out, cloneRemedy(remedy))
		}
	}
	return out
}

// Search matches query case-insensitively against name, description,
// benefits and target symptoms
func (s *RemedyService) Search(query string) []model.Remedy {
	q := strings.ToLower(query)
	out := []model.Remedy{}
	for _, remedy := range s.catalog {
		if strings.Contains(strings.ToLower(remedy.Name), q) ||
			strings.Contains(strings.ToLower(remedy.Description), q) ||
			anyContains(remedy.Benefits, q) ||
			anyContains(remedy.TargetSymptoms, q) {
			out = append(out, cloneRemedy(remedy))
		}
	}
	return out
}

// All returns the full catalog
func (s *RemedyService) All() []model.Remedy {
	out := make([]model.Remedy, 0, len(s.catalog))
	for _, remedy := range s.catalog {
		out = append(out, cloneRemedy(remedy))
	}
	return out
}

// matchTargets returns the inputs that contain, or are contained in, any target key
func matchTargets(inputs, targets []string) []string {
	matches := []string{}
	for _, input := range inputs {
		if input == "" {
			continue
		}
		for _, target := range targets {
			if strings.Contains(target, input) || strings.Contains(input, target) {
				matches = append(matches, input)
				break
			}
		}
	}
	return matches
}

func buildReasoning(symptomMatches, conditionMatches []string) string {
	var clauses []string
	if len(symptomMatches) > 0 {
		clauses = append(clauses, "Targets symptoms: "+strings.Join(symptomMatches, ", ")+".")
	}
	if len(conditionMatches) > 0 {
		clauses = append(clauses, "Effective for: "+strings.Join(conditionMatches, ", ")+".")
	}
	return strings.Join(clauses, " ")
}

func anyContains(values []string, q string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func cloneRemedy(r model.Remedy) model.Remedy {
	r.Benefits = slices.Clone(r.Benefits)
	r.Precautions = slices.Clone(r.Precautions)
	r.Interactions = slices.Clone(r.Interactions)
	r.TargetSymptoms = slices.Clone(r.TargetSymptoms)
	r.TargetConditions = slices.Clone(r.TargetConditions)
	return r
}
