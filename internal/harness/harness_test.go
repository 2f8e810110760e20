package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios, "no scenario files found under testdata")

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			New(t).Run(scenario)
		})
	}
}

func TestLoadScenario_DefaultsNameToFilename(t *testing.T) {
	s, err := LoadScenario("testdata/rsvp_privacy.yaml")
	require.NoError(t, err)
	require.Equal(t, "rsvp-privacy", s.Name)
	require.NotEmpty(t, s.Steps)
}
