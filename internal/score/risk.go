package score

// DefaultRiskThreshold 默认风险阈值
const DefaultRiskThreshold = 60

// RiskFlag 低于阈值的分项
type RiskFlag struct {
	Workroom  string    `json:"workroom"`
	Component Component `json:"component"`
	Score     float64   `json:"score"`
	Threshold float64   `json:"threshold"`
}

// Thresholds 风险阈值；PerComponent 中未出现的分项使用 Default
type Thresholds struct {
	Default      float64
	PerComponent map[Component]float64
}

// DefaultThresholds 所有分项使用 DefaultRiskThreshold
func DefaultThresholds() Thresholds {
	return Thresholds{Default: DefaultRiskThreshold}
}

func (t Thresholds) threshold(c Component) float64 {
	if v, ok := t.PerComponent[c]; ok {
		return v
	}
	return t.Default
}

// RiskFlags 找出每个 workroom 低于阈值的分项（含 WPI）
func RiskFlags(results []Result, t Thresholds) []RiskFlag {
	components := make([]Component, 0, len(Weights)+1)
	for _, w := range Weights {
		components = append(components, w.Component)
	}
	components = append(components, ComponentWPI)

	var flags []RiskFlag
	for _, r := range results {
		for _, c := range components {
			limit := t.threshold(c)
			if s := r.Scores[c]; s < limit {
				flags = append(flags, RiskFlag{Workroom: r.Name, Component: c, Score: s, Threshold: limit})
			}
		}
	}
	return flags
}
