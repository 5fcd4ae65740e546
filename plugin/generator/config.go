package generator

import (
	"github.com/pkg/errors"

	"github.com/lectern/lectern/internal/profile"
)

// NewService builds the generation client selected by the profile.
func NewService(profile *profile.Profile) (Service, error) {
	switch profile.GeneratorProvider {
	case "", "http":
		return NewHTTPClient(profile.GeneratorBaseURL, profile.GeneratorTimeout), nil
	case "openai":
		if profile.GeneratorAPIKey == "" {
			return nil, errors.New("openai provider requires LECTERN_GENERATOR_API_KEY")
		}
		return NewOpenAIClient(profile.GeneratorBaseURL, profile.GeneratorAPIKey, profile.GeneratorModel), nil
	default:
		return nil, errors.Errorf("unsupported generator provider %q", profile.GeneratorProvider)
	}
}
