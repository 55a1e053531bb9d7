package model

// BaseSignupFee is the level-1 signup/upgrade fee in naira.
const BaseSignupFee int64 = 15000

// UpgradeAmount returns the payment required for a signup or upgrade at the
// given level: BaseSignupFee doubled once per level above 1. A zero or
// negative level means no level was chosen and costs nothing.
//
//	level 1 -> 15,000
//	level 2 -> 30,000
//	level 3 -> 60,000
func UpgradeAmount(level int) int64 {
	if level < 1 {
		return 0
	}
	return BaseSignupFee << (level - 1)
}
