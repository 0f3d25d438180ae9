package spoofing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestDetect_CleanSignals(t *testing.T) {
	v := Detect(Signals{
		Accuracy:  ptr(12.5),
		UserAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/126.0 Mobile Safari/537.36",
	})

	assert.False(t, v.Suspicious)
	assert.Empty(t, v.Reasons)
}

func TestDetect_Triggers(t *testing.T) {
	tests := []struct {
		name   string
		in     Signals
		reason string
	}{
		{"sub-meter accuracy", Signals{Accuracy: ptr(0.4)}, ReasonImplausibleAccuracy},
		{"negative accuracy", Signals{Accuracy: ptr(-3)}, ReasonImplausibleAccuracy},
		{"mock user agent", Signals{UserAgent: "FakeGPS/2.1 (Android)"}, ReasonMockUserAgent},
		{"emulator user agent", Signals{UserAgent: "Android SDK built for x86 Emulator"}, ReasonMockUserAgent},
		{"mock location flag", Signals{MockLocationEnabled: true}, ReasonDeveloperOptions},
		{"developer settings flag", Signals{DeveloperSettingsEnabled: true}, ReasonDeveloperOptions},
		{"mock provider flag", Signals{IsFromMockProvider: true}, ReasonMockProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Detect(tt.in)
			assert.True(t, v.Suspicious)
			assert.Contains(t, v.Reasons, tt.reason)
		})
	}
}

func TestDetect_MissingOrZeroAccuracyIsNotSuspicious(t *testing.T) {
	assert.False(t, Detect(Signals{}).Suspicious)
	assert.False(t, Detect(Signals{Accuracy: ptr(0)}).Suspicious)
	assert.False(t, Detect(Signals{Accuracy: ptr(1)}).Suspicious)
}

func TestDetect_CollectsAllReasons(t *testing.T) {
	v := Detect(Signals{
		Accuracy:                 ptr(0.1),
		UserAgent:                "spoofer",
		DeveloperSettingsEnabled: true,
		MockLocationEnabled:      true,
	})

	assert.True(t, v.Suspicious)
	assert.Equal(t, []string{ReasonImplausibleAccuracy, ReasonMockUserAgent, ReasonDeveloperOptions}, v.Reasons)
}
