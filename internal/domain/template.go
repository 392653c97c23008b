package domain

// DecisionTemplate pre-fills the prediction for a common kind of decision.
type DecisionTemplate struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Category             Category `json:"category"`
	Description          string   `json:"description"`
	DefaultEnergy        float64  `json:"default_energy"`
	DefaultMood          float64  `json:"default_mood"`
	DefaultStress        float64  `json:"default_stress"`
	DefaultRegretChance  float64  `json:"default_regret_chance"`
	DefaultOverallImpact float64  `json:"default_overall_impact"`
	DefaultConfidence    float64  `json:"default_confidence"`
	DefaultCheckInDays   int      `json:"default_check_in_days"`
}

var templates = []DecisionTemplate{
	{
		ID: "late_night_screen", Title: "Late-night screen time", Category: CategoryHealth,
		Description:   "Watching YouTube/Netflix past midnight",
		DefaultEnergy: -3, DefaultMood: -2, DefaultStress: 1, DefaultRegretChance: 4, DefaultOverallImpact: -2,
		DefaultConfidence: 70, DefaultCheckInDays: 1,
	},
	{
		ID: "food_order", Title: "Order food delivery", Category: CategoryMoney,
		Description:   "Ordering food instead of cooking",
		DefaultEnergy: 1, DefaultMood: 2, DefaultStress: -1, DefaultRegretChance: -1, DefaultOverallImpact: -1,
		DefaultConfidence: 60, DefaultCheckInDays: 1,
	},
	{
		ID: "skip_gym", Title: "Skip gym workout", Category: CategoryHealth,
		Description:   "Deciding to skip planned workout",
		DefaultEnergy: 0, DefaultMood: -1, DefaultStress: 1, DefaultRegretChance: 2, DefaultOverallImpact: -2,
		DefaultConfidence: 65, DefaultCheckInDays: 1,
	},
	{
		ID: "new_course", Title: "Buy online course", Category: CategoryStudy,
		Description:   "Purchasing a new course or learning resource",
		DefaultEnergy: 2, DefaultMood: 3, DefaultStress: -1, DefaultRegretChance: -2, DefaultOverallImpact: 3,
		DefaultConfidence: 55, DefaultCheckInDays: 7,
	},
	{
		ID: "new_project", Title: "Take on new project", Category: CategoryWork,
		Description:   "Accepting a new work project or assignment",
		DefaultEnergy: 1, DefaultMood: 2, DefaultStress: 2, DefaultRegretChance: 0, DefaultOverallImpact: 2,
		DefaultConfidence: 60, DefaultCheckInDays: 3,
	},
	{
		ID: "impulse_purchase", Title: "Impulse purchase", Category: CategoryMoney,
		Description:   "Making an unplanned purchase",
		DefaultEnergy: 1, DefaultMood: 2, DefaultStress: 0, DefaultRegretChance: 1, DefaultOverallImpact: -1,
		DefaultConfidence: 50, DefaultCheckInDays: 7,
	},
	{
		ID: "social_event", Title: "Attend social event", Category: CategoryRelationships,
		Description:   "Deciding to attend or skip a social gathering",
		DefaultEnergy: 2, DefaultMood: 3, DefaultStress: -1, DefaultRegretChance: -1, DefaultOverallImpact: 1,
		DefaultConfidence: 65, DefaultCheckInDays: 7,
	},
	{
		ID: "stay_up_late", Title: "Stay up late working", Category: CategoryWork,
		Description:   "Working late into the night",
		DefaultEnergy: -4, DefaultMood: -2, DefaultStress: 2, DefaultRegretChance: 3, DefaultOverallImpact: -2,
		DefaultConfidence: 70, DefaultCheckInDays: 1,
	},
}

// Templates returns a copy of the built-in template catalogue.
func Templates() []DecisionTemplate {
	out := make([]DecisionTemplate, len(templates))
	copy(out, templates)
	return out
}

// TemplateByID looks up a template. The second result is false when no
// template has that id.
func TemplateByID(id string) (DecisionTemplate, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return DecisionTemplate{}, false
}

// TemplatesByCategory returns the templates filed under c.
func TemplatesByCategory(c Category) []DecisionTemplate {
	var out []DecisionTemplate
	for _, t := range templates {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// Input converts the template into a DecisionInput with its defaults applied.
func (t DecisionTemplate) Input() DecisionInput {
	return DecisionInput{
		Title:                  t.Title,
		Description:            t.Description,
		Category:               t.Category,
		ReminderDays:           t.DefaultCheckInDays,
		PredictedEnergy:        Float(t.DefaultEnergy),
		PredictedMood:          Float(t.DefaultMood),
		PredictedStress:        Float(t.DefaultStress),
		PredictedRegretChance:  Float(t.DefaultRegretChance),
		PredictedOverallImpact: Float(t.DefaultOverallImpact),
		PredictionConfidence:   Float(t.DefaultConfidence),
	}
}

// Apply fills the fields left empty in in with the template defaults.
// Values supplied in in always win.
func (t DecisionTemplate) Apply(in DecisionInput) DecisionInput {
	def := t.Input()
	if in.Title == "" {
		in.Title = def.Title
	}
	if in.Description == "" {
		in.Description = def.Description
	}
	if in.Category == "" {
		in.Category = def.Category
	}
	if in.ReminderDays == 0 {
		in.ReminderDays = def.ReminderDays
	}
	fill := func(dst **float64, v *float64) {
		if *dst == nil {
			*dst = v
		}
	}
	fill(&in.PredictedEnergy, def.PredictedEnergy)
	fill(&in.PredictedMood, def.PredictedMood)
	fill(&in.PredictedStress, def.PredictedStress)
	fill(&in.PredictedRegretChance, def.PredictedRegretChance)
	fill(&in.PredictedOverallImpact, def.PredictedOverallImpact)
	fill(&in.PredictionConfidence, def.PredictionConfidence)
	return in
}
