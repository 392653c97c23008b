package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlstore"
	"github.com/phrazzld/realitycheck-api/internal/store"
	"github.com/phrazzld/realitycheck-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func newStores(t *testing.T) (*sql.DB, *sqlstore.DecisionStore, *sqlstore.GroupStore) {
	t.Helper()
	return storesFor(testdb.SQLite(t))
}

func storesFor(db *testdb.DB) (*sql.DB, *sqlstore.DecisionStore, *sqlstore.GroupStore) {
	return db.DB,
		sqlstore.NewDecisionStore(db, db.Dialect, nil),
		sqlstore.NewGroupStore(db, db.Dialect, nil)
}

func mustDecision(t *testing.T, title string, category domain.Category, tags []string, at time.Time) domain.Decision {
	t.Helper()
	d, err := domain.NewDecision(domain.DecisionInput{
		Title:      title,
		Prediction: "it will go fine",
		Category:   category,
		Tags:       tags,
	}, at)
	require.NoError(t, err)
	return d
}

func TestDecisionStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, decisions, _ := newStores(t)

	d, err := domain.NewDecision(domain.DecisionInput{
		Title:                  "Take the new job",
		Description:            "Offer from a smaller company",
		Prediction:             "more stress at first, better mood later",
		Category:               domain.CategoryWork,
		Tags:                   []string{"career", "big"},
		ReminderDays:           3,
		PredictedEnergy:        domain.Float(1),
		PredictedMood:          domain.Float(2.5),
		PredictedStress:        domain.Float(-3),
		PredictedRegretChance:  domain.Float(-1),
		PredictedOverallImpact: domain.Float(4),
		PredictionConfidence:   domain.Float(70),
	}, base)
	require.NoError(t, err)

	id, err := decisions.Insert(ctx, d)
	require.NoError(t, err)
	assert.Positive(t, id)
	d.ID = id

	got, err := decisions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	withOutcome, err := got.WithOutcome(domain.OutcomeInput{
		Outcome:      "it was fine",
		ActualMood:   domain.Float(3),
		ActualRegret: domain.Float(1),
		Followed:     domain.FollowYes,
	}, base.Add(72*time.Hour))
	require.NoError(t, err)
	require.NoError(t, decisions.Update(ctx, withOutcome))

	got, err = decisions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, withOutcome, got)
	assert.True(t, got.IsCompleted())
	assert.Equal(t, domain.FollowYes, got.Followed)
}

func TestDecisionStore_NotFound(t *testing.T) {
	t.Parallel()
	testdb.Each(t, func(t *testing.T, tdb *testdb.DB) {
		ctx := context.Background()
		_, decisions, _ := storesFor(tdb)

		_, err := decisions.Get(ctx, 42)
		assert.ErrorIs(t, err, store.ErrDecisionNotFound)
		assert.True(t, store.IsNotFoundError(err))

		d := mustDecision(t, "ghost", "", nil, base)
		d.ID = 42
		assert.ErrorIs(t, decisions.Update(ctx, d), store.ErrDecisionNotFound)
		assert.ErrorIs(t, decisions.Delete(ctx, 42), store.ErrDecisionNotFound)
	})
}

func TestDecisionStore_InsertRejectsInvalid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, decisions, _ := newStores(t)

	d := mustDecision(t, "valid", "", nil, base)
	d.ActualRegret = domain.Float(11)

	_, err := decisions.Insert(ctx, d)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestDecisionStore_ListFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, decisions, groups := newStores(t)

	g, err := domain.NewDecisionGroup("Side project", "", "", base)
	require.NoError(t, err)
	groupID, err := groups.Insert(ctx, g)
	require.NoError(t, err)

	seed := []domain.Decision{
		mustDecision(t, "run", domain.CategoryHealth, []string{"Morning"}, base),
		mustDecision(t, "budget", domain.CategoryMoney, []string{"monthly"}, base.Add(24*time.Hour)),
		mustDecision(t, "swim", domain.CategoryHealth, nil, base.Add(48*time.Hour)),
	}
	seed[1].GroupID = &groupID
	for _, d := range seed {
		_, err := decisions.Insert(ctx, d)
		require.NoError(t, err)
	}

	from := base.Add(-time.Hour)
	to := base.Add(30 * time.Hour)

	tests := []struct {
		name   string
		filter store.DecisionFilter
		want   []string
	}{
		{name: "no filter newest first", filter: store.DecisionFilter{}, want: []string{"swim", "budget", "run"}},
		{name: "category", filter: store.DecisionFilter{Category: domain.CategoryHealth}, want: []string{"swim", "run"}},
		{name: "tag ignores case", filter: store.DecisionFilter{Tags: []string{"morning"}}, want: []string{"run"}},
		{name: "date range", filter: store.DecisionFilter{From: &from, To: &to}, want: []string{"budget", "run"}},
		{name: "group", filter: store.DecisionFilter{GroupID: &groupID}, want: []string{"budget"}},
		{name: "completed only", filter: store.DecisionFilter{CompletedOnly: true}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decisions.List(ctx, tt.filter)
			require.NoError(t, err)
			titles := make([]string, 0, len(got))
			for _, d := range got {
				titles = append(titles, d.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestDecisionStore_CategoriesAndTags(t *testing.T) {
	t.Parallel()
	testdb.Each(t, func(t *testing.T, tdb *testdb.DB) {
		ctx := context.Background()
		_, decisions, _ := storesFor(tdb)

		for _, d := range []domain.Decision{
			mustDecision(t, "a", domain.CategoryWork, []string{"focus", "deep"}, base),
			mustDecision(t, "b", domain.CategoryHealth, []string{"focus"}, base),
			mustDecision(t, "c", "", []string{"adhoc"}, base),
		} {
			_, err := decisions.Insert(ctx, d)
			require.NoError(t, err)
		}

		categories, err := decisions.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Category{domain.CategoryHealth, domain.CategoryWork}, categories)

		tags, err := decisions.Tags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"adhoc", "deep", "focus"}, tags)
	})
}

func TestGroupStore_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, _, groups := newStores(t)

	g, err := domain.NewDecisionGroup("Health", "fitness", "#FD79A8", base)
	require.NoError(t, err)

	id, err := groups.Insert(ctx, g)
	require.NoError(t, err)
	g.ID = id

	got, err := groups.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, g, got)

	_, err = groups.Insert(ctx, g)
	assert.ErrorIs(t, err, store.ErrGroupNameExists)
	assert.True(t, store.IsDuplicateError(err))

	g.Description = "sleep and fitness"
	g.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, groups.Update(ctx, g))

	list, err := groups.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sleep and fitness", list[0].Description)

	_, err = groups.Get(ctx, id+100)
	assert.ErrorIs(t, err, store.ErrGroupNotFound)
}

func TestGroupStore_DeleteDetachesDecisions(t *testing.T) {
	t.Parallel()
	testdb.Each(t, func(t *testing.T, tdb *testdb.DB) {
		ctx := context.Background()
		db, decisions, groups := storesFor(tdb)

		g, err := domain.NewDecisionGroup("Work", "", "", base)
		require.NoError(t, err)
		groupID, err := groups.Insert(ctx, g)
		require.NoError(t, err)

		d := mustDecision(t, "ship it", domain.CategoryWork, nil, base)
		d.GroupID = &groupID
		decisionID, err := decisions.Insert(ctx, d)
		require.NoError(t, err)

		n, err := groups.CountDecisions(ctx, groupID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return groups.WithTx(tx).Delete(ctx, groupID)
		})
		require.NoError(t, err)

		got, err := decisions.Get(ctx, decisionID)
		require.NoError(t, err)
		assert.Nil(t, got.GroupID)

		assert.ErrorIs(t, groups.Delete(ctx, groupID), store.ErrGroupNotFound)
	})
}

func TestDecisionStore_WithTxRollsBack(t *testing.T) {
	t.Parallel()
	testdb.Each(t, func(t *testing.T, tdb *testdb.DB) {
		ctx := context.Background()
		db, decisions, _ := storesFor(tdb)

		boom := errors.New("boom")
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			if _, err := decisions.WithTx(tx).Insert(ctx, mustDecision(t, "temp", "", nil, base)); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		list, err := decisions.List(ctx, store.DecisionFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

// brokenDB fails every statement the way a dropped connection would.
type brokenDB struct {
	err error
}

func (b brokenDB) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, b.err
}

func (b brokenDB) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, b.err
}

func (b brokenDB) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, b.err
}

func (b brokenDB) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func TestStores_WriteFailuresCarryOperation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cause := errors.New("connection reset by peer")
	db := brokenDB{err: cause}
	dialect := sqlstore.Dialect{Name: "broken"}
	decisions := sqlstore.NewDecisionStore(db, dialect, nil)
	groups := sqlstore.NewGroupStore(db, dialect, nil)

	d := mustDecision(t, "Go to bed early", domain.CategoryHealth, nil, base)
	d.ID = 7
	g, err := domain.NewDecisionGroup("Evenings", "", "", base)
	require.NoError(t, err)
	g.ID = 3

	tests := []struct {
		name    string
		err     error
		entity  string
		op      string
		failure error
	}{
		{"decision update", decisions.Update(ctx, d), "decision", "update", store.ErrUpdateFailed},
		{"decision delete", decisions.Delete(ctx, 7), "decision", "delete", store.ErrDeleteFailed},
		{"group update", groups.Update(ctx, g), "group", "update", store.ErrUpdateFailed},
		{"group delete", groups.Delete(ctx, 3), "group", "delete", store.ErrDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var storeErr *store.StoreError
			require.ErrorAs(t, tt.err, &storeErr)
			assert.Equal(t, tt.entity, storeErr.Entity)
			assert.Equal(t, tt.op, storeErr.Operation)
			assert.ErrorIs(t, tt.err, tt.failure)
			assert.ErrorIs(t, tt.err, cause)
			assert.False(t, store.IsNotFoundError(tt.err))
		})
	}
}
