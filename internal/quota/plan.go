package quota

// Plan is the subscription tier inferred from a token usage ceiling.
type Plan string

const (
	PlanLite    Plan = "Lite"
	PlanPro     Plan = "Pro"
	PlanMax     Plan = "Max"
	PlanUnknown Plan = "Unknown"
)

const (
	LiteLimit = 40_000_000
	ProLimit  = 5 * LiteLimit
	MaxLimit  = 20 * LiteLimit
)

// IdentifyPlan maps a token usage ceiling to a tier. Only exact matches count.
func IdentifyPlan(usage float64) Plan {
	switch usage {
	case LiteLimit:
		return PlanLite
	case ProLimit:
		return PlanPro
	case MaxLimit:
		return PlanMax
	default:
		return PlanUnknown
	}
}
