package engagement

// Medal ids.
const (
	MedalLevel2       = "level_2"
	MedalLevel3       = "level_3"
	MedalFirstComment = "first_comment"
)

// InitialLevel is the level every account starts at.
const InitialLevel = 1

// Threshold is a completed-workout count that levels the account up and
// grants a medal.
type Threshold struct {
	Count int
	Medal string
}

// LevelThresholds is ordered by Count. Reaching the i-th threshold moves the
// account to level InitialLevel+i+1.
var LevelThresholds = [...]Threshold{
	{Count: 2, Medal: MedalLevel2},
	{Count: 5, Medal: MedalLevel3},
}

// MaxLevel is terminal: no transition fires after the last threshold.
const MaxLevel = InitialLevel + len(LevelThresholds)

// ThresholdFor reports whether count is exactly a level threshold.
func ThresholdFor(count int) (Threshold, bool) {
	for _, th := range LevelThresholds {
		if th.Count == count {
			return th, true
		}
	}
	return Threshold{}, false
}
