package scoring

// Params holds the constants of the scoring model.
type Params struct {
	// ErrorScale is the average absolute error that maps to zero accuracy.
	ErrorScale float64
	// RegretChanceOffset shifts a -5..+5 predicted regret chance onto the 0..10 regret scale.
	RegretChanceOffset float64

	// NotFollowedPenalty is added to recorded regret when the decision was not followed.
	NotFollowedPenalty float64
	// HighRegretPenalty is added when the decision was followed and regret was still high.
	HighRegretPenalty float64
	// HighRegretThreshold is the recorded regret at which HighRegretPenalty applies.
	HighRegretThreshold float64
	// MaxRegretScore normalizes the adjusted regret score to a percentage.
	MaxRegretScore float64

	// GoodRegretIndexBelow marks a decision good when its regret index is under this value.
	GoodRegretIndexBelow float64
	// GoodAccuracyAtLeast marks a decision good when it has no regret index and
	// its accuracy reaches this value.
	GoodAccuracyAtLeast float64
}

// NewDefaultParams returns the standard scoring constants.
func NewDefaultParams() *Params {
	return &Params{
		ErrorScale:         10,
		RegretChanceOffset: 5,

		NotFollowedPenalty:  2,
		HighRegretPenalty:   1,
		HighRegretThreshold: 7,
		MaxRegretScore:      13,

		GoodRegretIndexBelow: 50,
		GoodAccuracyAtLeast:  60,
	}
}
