// Package spoofing implements the heuristic location-spoofing check applied to attendance scans.
// It is advisory: callers decide whether a suspicious verdict rejects the scan.
package spoofing

import "strings"

// MinPlausibleAccuracy is the smallest GPS accuracy (meters) a real receiver reports.
const MinPlausibleAccuracy = 1.0

const (
	ReasonImplausibleAccuracy = "Unrealistic GPS accuracy"
	ReasonMockUserAgent       = "Mock location app detected"
	ReasonDeveloperOptions    = "Developer options enabled"
	ReasonMockProvider        = "Location reported by mock provider"
)

var mockUserAgentKeywords = []string{"mock", "fake", "spoof", "simulator", "emulator"}

// Signals are the client-reported facts the heuristic looks at.
type Signals struct {
	// Accuracy is nil when the client did not report one. Zero is treated the same way.
	Accuracy                 *float64
	UserAgent                string
	MockLocationEnabled      bool
	DeveloperSettingsEnabled bool
	IsFromMockProvider       bool
}

type Verdict struct {
	Suspicious bool     `json:"suspicious"`
	Reasons    []string `json:"reasons"`
}

// Detect evaluates the signals and returns every triggered reason.
func Detect(s Signals) Verdict {
	reasons := make([]string, 0)

	if s.Accuracy != nil && *s.Accuracy != 0 && *s.Accuracy < MinPlausibleAccuracy {
		reasons = append(reasons, ReasonImplausibleAccuracy)
	}

	if ua := strings.ToLower(s.UserAgent); ua != "" {
		for _, keyword := range mockUserAgentKeywords {
			if strings.Contains(ua, keyword) {
				reasons = append(reasons, ReasonMockUserAgent)
				break
			}
		}
	}

	if s.MockLocationEnabled || s.DeveloperSettingsEnabled {
		reasons = append(reasons, ReasonDeveloperOptions)
	}

	if s.IsFromMockProvider {
		reasons = append(reasons, ReasonMockProvider)
	}

	return Verdict{
		Suspicious: len(reasons) > 0,
		Reasons:    reasons,
	}
}
