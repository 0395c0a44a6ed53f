package sentiment

// Weighted dictionaries tuned to filing and headline language. Weights sit
// in (0, 1]; boilerplate terms every report carries ("risk") are damped so
// they do not drown the signal.

func positiveLexicon() map[string]float64 {
	return map[string]float64{
		"surge": 1.0, "surges": 1.0, "surged": 1.0, "surging": 1.0,
		"soar": 1.0, "soars": 1.0, "soared": 1.0, "soaring": 1.0,
		"rally": 0.9, "rallied": 0.9,
		"breakthrough": 0.9,
		"outperform":   0.8, "outperformed": 0.8, "outperforms": 0.8,
		"upgrade": 0.8, "upgraded": 0.8,
		"optimistic": 0.8, "optimism": 0.8,
		"record": 0.7, "gain": 0.7, "gains": 0.7, "gained": 0.7,
		"improve": 0.7, "improved": 0.7, "improvement": 0.7, "improving": 0.7,
		"robust": 0.7, "exceed": 0.7, "exceeded": 0.7, "exceeds": 0.7,
		"profit": 0.7, "profits": 0.7, "profitable": 0.7, "profitability": 0.7,
		"accelerated": 0.7, "accelerating": 0.7,
		"recovery": 0.7, "recovered": 0.7,
		"growth": 0.6, "growing": 0.6, "grew": 0.6,
		"increase": 0.6, "increased": 0.6, "increases": 0.6,
		"strong": 0.6, "strength": 0.6, "strengthened": 0.6,
		"expansion": 0.6, "expanded": 0.6,
		"momentum": 0.6, "favorable": 0.6, "resilient": 0.6, "resilience": 0.6,
		"beat": 0.6, "beats": 0.6,
		"success": 0.6, "successful": 0.6,
		"rebound": 0.6, "rebounded": 0.6,
		"higher": 0.5, "solid": 0.5, "healthy": 0.5,
		"innovation": 0.5, "innovative": 0.5,
		"efficiency": 0.5, "efficient": 0.5,
		"opportunity": 0.5, "opportunities": 0.5,
	}
}

func negativeLexicon() map[string]float64 {
	return map[string]float64{
		"bankruptcy": 1.0, "bankrupt": 1.0,
		"crash": 1.0, "collapse": 1.0, "collapsed": 1.0,
		"plunge": 1.0, "plunged": 1.0, "plunges": 1.0,
		"fraud": 1.0,
		"default": 0.9, "defaulted": 0.9, "defaults": 0.9,
		"impairment": 0.8, "impairments": 0.8, "impaired": 0.8,
		"writedown": 0.8, "writedowns": 0.8,
		"loss": 0.8, "losses": 0.8,
		"deteriorate": 0.8, "deteriorated": 0.8, "deterioration": 0.8,
		"downgrade": 0.8, "downgraded": 0.8, "downgrades": 0.8,
		"decline": 0.7, "declined": 0.7, "declines": 0.7, "declining": 0.7,
		"layoff": 0.7, "layoffs": 0.7,
		"shortfall": 0.7,
		"failure": 0.7, "failed": 0.7,
		"decrease": 0.6, "decreased": 0.6, "decreases": 0.6,
		"weak": 0.6, "weakness": 0.6, "weakened": 0.6,
		"adverse": 0.6, "adversely": 0.6,
		"litigation": 0.6, "lawsuit": 0.6, "lawsuits": 0.6,
		"restructuring": 0.6,
		"miss": 0.6, "missed": 0.6, "misses": 0.6,
		"slump": 0.6, "slumped": 0.6,
		"penalty": 0.6, "penalties": 0.6,
		"negative": 0.6, "unfavorable": 0.6,
		"headwind": 0.6, "headwinds": 0.6,
		"uncertainty": 0.5, "uncertain": 0.5,
		"volatile": 0.5, "volatility": 0.5,
		"challenging": 0.5, "challenges": 0.5,
		"pressure": 0.5, "pressures": 0.5,
		"concern": 0.5, "concerns": 0.5,
		"investigation": 0.5, "investigations": 0.5,
		"risk": 0.3, "risks": 0.3,
	}
}

func intensifierLexicon() map[string]float64 {
	return map[string]float64{
		"extremely":     1.8,
		"dramatically":  1.8,
		"significantly": 1.5,
		"substantially": 1.5,
		"sharply":       1.5,
		"materially":    1.4,
		"considerably":  1.4,
		"markedly":      1.4,
		"very":          1.3,
		"strongly":      1.3,
	}
}

func negatorLexicon() map[string]bool {
	return map[string]bool{
		"not":      true,
		"no":       true,
		"never":    true,
		"neither":  true,
		"none":     true,
		"without":  true,
		"hardly":   true,
		"barely":   true,
		"cannot":   true,
		"unlikely": true,
	}
}
