package service

import "github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"

// remedyCatalog is the static knowledge base, in declaration order.
// Ranking ties fall back to this order.
var remedyCatalog = []model.Remedy{
	{
		ID:               "turmeric",
		Name:             "Turmeric (Curcumin)",
		Type:             model.RemedyTypeHerb,
		Description:      "A powerful anti-inflammatory spice containing curcumin, known for its therapeutic properties.",
		Benefits:         []string{"Reduces inflammation", "Pain relief", "Antioxidant properties", "Supports joint health"},
		Usage:            "500-1000mg daily with meals, or 1 tsp turmeric powder in warm milk",
		Precautions:      []string{"May increase bleeding risk", "Can worsen acid reflux", "Avoid before surgery"},
		Interactions:     []string{"Blood thinners", "Diabetes medications", "Iron supplements"},
		EvidenceLevel:    model.EvidenceLevelHigh,
		TargetSymptoms:   []string{"pain", "inflammation", "swelling", "ache"},
		TargetConditions: []string{"arthritis", "inflammation"},
	},
	{
		ID:               "ginger",
		Name:             "Ginger Root",
		Type:             model.RemedyTypeHerb,
		Description:      "A warming herb with anti-inflammatory and digestive properties.",
		Benefits:         []string{"Reduces nausea", "Anti-inflammatory", "Digestive aid", "Pain relief"},
		Usage:            "1-3g daily as tea, capsules, or fresh root",
		Precautions:      []string{"May increase bleeding risk", "Can cause heartburn in some people"},
		Interactions:     []string{"Blood thinners", "Diabetes medications"},
		EvidenceLevel:    model.EvidenceLevelHigh,
		TargetSymptoms:   []string{"nausea", "vomiting", "pain", "inflammation", "bloating"},
		TargetConditions: []string{"nausea", "inflammation"},
	},
	{
		ID:               "chamomile",
		Name:             "Chamomile",
		Type:             model.RemedyTypeHerb,
		Description:      "A gentle herb known for its calming and anti-inflammatory properties.",
		Benefits:         []string{"Promotes relaxation", "Reduces anxiety", "Anti-inflammatory", "Digestive support"},
		Usage:            "1-2 cups of chamomile tea daily, or 400-1600mg extract",
		Precautions:      []string{"May cause allergic reactions in people sensitive to ragweed", "Avoid if pregnant"},
		Interactions:     []string{"Blood thinners", "Sedative medications"},
		EvidenceLevel:    model.EvidenceLevelModerate,
		TargetSymptoms:   []string{"anxiety", "insomnia", "inflammation", "irritation"},
		TargetConditions: []string{"anxiety", "insomnia", "inflammation"},
	},
	{
		ID:               "omega3",
		Name:             "Omega-3 Fatty Acids",
		Type:             model.RemedyTypeSupplement,
		Description:      "Essential fatty acids with powerful anti-inflammatory properties.",
		Benefits:         []string{"Reduces inflammation", "Supports heart health", "Brain function", "Joint health"},
		Usage:            "1-3g daily with meals, preferably from fish oil or algae",
		Precautions:      []string{"May increase bleeding risk", "Can cause fishy aftertaste"},
		Interactions:     []string{"Blood thinners", "Blood pressure medications"},
		EvidenceLevel:    model.EvidenceLevelHigh,
		TargetSymptoms:   []string{"inflammation", "pain", "stiff"},
		TargetConditions: []string{"arthritis", "inflammation", "hypertension"},
	},
	{
		ID:               "meditation",
		Name:             "Mindfulness Meditation",
		Type:             model.RemedyTypeTherapy,
		Description:      "A mind-body practice that can help reduce stress and manage pain.",
		Benefits:         []string{"Stress reduction", "Pain management", "Improved sleep", "Emotional regulation"},
		Usage:            "10-20 minutes daily, guided or self-directed practice",
		Precautions:      []string{"May initially increase awareness of discomfort", "Not suitable during acute mental health crises"},
		Interactions:     []string{},
		EvidenceLevel:    model.EvidenceLevelHigh,
		TargetSymptoms:   []string{"anxiety", "pain", "insomnia", "fatigue"},
		TargetConditions: []string{"anxiety", "depression", "insomnia"},
	},
	{
		ID:               "probiotics",
		Name:             "Probiotics",
		Type:             model.RemedyTypeSupplement,
		Description:      "Beneficial bacteria that support digestive and immune health.",
		Benefits:         []string{"Digestive health", "Immune support", "Mood regulation", "Inflammation reduction"},
		Usage:            "1-10 billion CFU daily with or without food",
		Precautions:      []string{"May cause initial digestive upset", "Avoid if immunocompromised"},
		Interactions:     []string{"Antibiotics (take 2 hours apart)"},
		EvidenceLevel:    model.EvidenceLevelModerate,
		TargetSymptoms:   []string{"bloating", "diarrhea", "constipation", "fatigue"},
		TargetConditions: []string{"digestive issues", "inflammation"},
	},
	{
		ID:               "echinacea",
		Name:             "Echinacea",
		Type:             model.RemedyTypeHerb,
		Description:      "An immune-supporting herb traditionally used for respiratory health.",
		Benefits:         []string{"Immune system support", "Reduces cold duration", "Anti-inflammatory", "Wound healing"},
		Usage:            "300-500mg three times daily at first sign of illness",
		Precautions:      []string{"Avoid if allergic to ragweed family", "Not for long-term use", "Avoid with autoimmune conditions"},
		Interactions:     []string{"Immunosuppressive medications", "Caffeine"},
		EvidenceLevel:    model.EvidenceLevelModerate,
		TargetSymptoms:   []string{"cough", "congestion", "runny nose", "sneezing"},
		TargetConditions: []string{"cold", "flu", "infection"},
	},
	{
		ID:               "lavender",
		Name:             "Lavender",
		Type:             model.RemedyTypeHerb,
		Description:      "A calming herb known for its relaxing and sleep-promoting properties.",
		Benefits:         []string{"Promotes relaxation", "Improves sleep quality", "Reduces anxiety", "Pain relief"},
		Usage:            "Essential oil aromatherapy, tea, or 80-160mg capsules before bed",
		Precautions:      []string{"May cause drowsiness", "Avoid during pregnancy", "Can cause skin irritation"},
		Interactions:     []string{"Sedative medications", "Blood pressure medications"},
		EvidenceLevel:    model.EvidenceLevelModerate,
		TargetSymptoms:   []string{"anxiety", "insomnia", "headache", "irritation"},
		TargetConditions: []string{"anxiety", "insomnia"},
	},
	{
		ID:               "green_tea",
		Name:             "Green Tea (EGCG)",
		Type:             model.RemedyTypeDietary,
		Description:      "Rich in antioxidants, particularly EGCG, with numerous health benefits.",
		Benefits:         []string{"Antioxidant properties", "Supports metabolism", "Brain health", "Heart health"},
		Usage:            "2-3 cups daily or 300-400mg EGCG extract",
		Precautions:      []string{"Contains caffeine", "May interfere with iron absorption", "Avoid on empty stomach"},
		Interactions:     []string{"Blood thinners", "Iron supplements", "Beta-blockers"},
		EvidenceLevel:    model.EvidenceLevelHigh,
		TargetSymptoms:   []string{"fatigue", "inflammation"},
		TargetConditions: []string{"inflammation", "hypertension"},
	},
	{
		ID:               "valerian",
		Name:             "Valerian Root",
		Type:             model.RemedyTypeHerb,
		Description:      "A traditional herb used for sleep disorders and anxiety.",
		Benefits:         []string{"Improves sleep quality", "Reduces anxiety", "Muscle relaxation", "Stress relief"},
		Usage:            "300-600mg extract 30 minutes before bedtime",
		Precautions:      []string{"May cause drowsiness", "Avoid with alcohol", "Can cause vivid dreams"},
		Interactions:     []string{"Sedative medications", "Alcohol", "Anesthesia"},
		EvidenceLevel:    model.EvidenceLevelModerate,
		TargetSymptoms:   []string{"insomnia", "anxiety", "stiff", "tight"},
		TargetConditions: []string{"insomnia", "anxiety"},
	},
	{
		ID:               "elderberry",
		Name:             "Elderberry",
		Type:             model.RemedyTypeHerb,
		Description:      "A berry rich in antioxidants and traditionally used for immune support.",
		Benefits:         []string{"Immune system support", "Antiviral properties", "Reduces cold symptoms", "Antioxidant"},
		Usage:            "15ml syrup or 300-600mg extract daily during illness",
		Precautions:      []string{"Raw elderberries are toxic", "May cause digestive upset", "Avoid with autoimmune conditions"},
		Interactions:     []string{"Immunosuppressive medications", "Diabetes medications"},
		EvidenceLevel:    model.EvidenceLevelModerate,
		TargetSymptoms:   []string{"cough", "congestion", "fever", "fatigue"},
		TargetConditions: []string{"cold", "flu", "infection"},
	},
	{
		ID:               "yoga",
		Name:             "Yoga Practice",
		Type:             model.RemedyTypeLifestyle,
		Description:      "A mind-body practice combining physical postures, breathing, and meditation.",
		Benefits:         []string{"Improves flexibility", "Reduces stress", "Pain management", "Better sleep"},
		Usage:            "20-60 minutes daily, adapted to your ability level",
		Precautions:      []string{"Avoid certain poses with injuries", "Start slowly", "Listen to your body"},
		Interactions:     []string{},
		EvidenceLevel:    model.EvidenceLevelHigh,
		TargetSymptoms:   []string{"pain", "stiff", "anxiety", "insomnia"},
		TargetConditions: []string{"arthritis", "anxiety", "depression", "hypertension"},
	},
	{
		ID:               "magnesium",
		Name:             "Magnesium",
		Type:             model.RemedyTypeSupplement,
		Description:      "An essential mineral involved in over 300 enzymatic reactions in the body.",
		Benefits:         []string{"Muscle relaxation", "Better sleep", "Stress reduction", "Heart health"},
		Usage:            "200-400mg daily, preferably magnesium glycinate or citrate",
		Precautions:      []string{"May cause digestive upset", "Reduce dose if diarrhea occurs", "Kidney disease caution"},
		Interactions:     []string{"Antibiotics", "Diuretics", "Proton pump inhibitors"},
		EvidenceLevel:    model.EvidenceLevelHigh,
		TargetSymptoms:   []string{"cramps", "stiff", "insomnia", "headache"},
		TargetConditions: []string{"insomnia", "migraine", "hypertension"},
	},
	{
		ID:               "acupuncture",
		Name:             "Acupuncture",
		Type:             model.RemedyTypeTherapy,
		Description:      "Traditional Chinese medicine practice involving insertion of thin needles at specific points.",
		Benefits:         []string{"Pain relief", "Stress reduction", "Improved sleep", "Nausea relief"},
		Usage:            "Weekly sessions with licensed acupuncturist, typically 6-12 sessions",
		Precautions:      []string{"Use licensed practitioners only", "Risk of infection if not sterile", "Avoid if bleeding disorders"},
		Interactions:     []string{"Blood thinners (increased bleeding risk)"},
		EvidenceLevel:    model.EvidenceLevelHigh,
		TargetSymptoms:   []string{"pain", "nausea", "headache", "anxiety"},
		TargetConditions: []string{"arthritis", "migraine", "anxiety", "nausea"},
	},
}
