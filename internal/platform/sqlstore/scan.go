package sqlstore

import (
	"database/sql"
	"strings"
	"time"

	"github.com/phrazzld/realitycheck-api/internal/domain"
)

const decisionColumns = `id, title, description, category, tags, prediction, outcome, group_id,
	created_at, reminder_at, outcome_recorded_at,
	predicted_energy, predicted_mood, predicted_stress, predicted_regret_chance,
	predicted_overall_impact, prediction_confidence,
	actual_energy, actual_mood, actual_stress, actual_regret, followed`

type scanner interface {
	Scan(dest ...any) error
}

func scanDecision(row scanner) (domain.Decision, error) {
	var (
		d                                domain.Decision
		category, outcome                sql.NullString
		tags                             string
		groupID                          sql.NullInt64
		reminderAt, recordedAt           sql.NullTime
		pEnergy, pMood, pStress, pRegret sql.NullFloat64
		pImpact, pConfidence             sql.NullFloat64
		aEnergy, aMood, aStress, aRegret sql.NullFloat64
		followed                         sql.NullBool
	)
	err := row.Scan(
		&d.ID, &d.Title, &d.Description, &category, &tags, &d.Prediction, &outcome, &groupID,
		&d.CreatedAt, &reminderAt, &recordedAt,
		&pEnergy, &pMood, &pStress, &pRegret, &pImpact, &pConfidence,
		&aEnergy, &aMood, &aStress, &aRegret, &followed,
	)
	if err != nil {
		return domain.Decision{}, err
	}

	d.Category = domain.Category(category.String)
	d.Outcome = outcome.String
	d.Tags = splitTags(tags)
	if groupID.Valid {
		d.GroupID = &groupID.Int64
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.ReminderAt = timePtr(reminderAt)
	d.OutcomeRecordedAt = timePtr(recordedAt)
	d.PredictedEnergy = floatPtr(pEnergy)
	d.PredictedMood = floatPtr(pMood)
	d.PredictedStress = floatPtr(pStress)
	d.PredictedRegretChance = floatPtr(pRegret)
	d.PredictedOverallImpact = floatPtr(pImpact)
	d.PredictionConfidence = floatPtr(pConfidence)
	d.ActualEnergy = floatPtr(aEnergy)
	d.ActualMood = floatPtr(aMood)
	d.ActualStress = floatPtr(aStress)
	d.ActualRegret = floatPtr(aRegret)
	if followed.Valid {
		d.Followed = domain.FollowThroughFromPtr(&followed.Bool)
	}
	return d, nil
}

// decisionArgs returns the column values of d in decisionColumns order,
// without the id.
func decisionArgs(d domain.Decision) []any {
	return []any{
		d.Title, d.Description, nullString(string(d.Category)), joinTags(d.Tags), d.Prediction,
		nullString(d.Outcome), d.GroupID,
		d.CreatedAt.UTC(), utcPtr(d.ReminderAt), utcPtr(d.OutcomeRecordedAt),
		d.PredictedEnergy, d.PredictedMood, d.PredictedStress, d.PredictedRegretChance,
		d.PredictedOverallImpact, d.PredictionConfidence,
		d.ActualEnergy, d.ActualMood, d.ActualStress, d.ActualRegret, d.Followed.Ptr(),
	}
}

// Tags are stored as one comma-separated column.
func joinTags(tags []string) string {
	return strings.Join(domain.NormalizeTags(tags), ",")
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return domain.NormalizeTags(strings.Split(s, ","))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
