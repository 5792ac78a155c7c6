package model

// DefaultProvider is used when no provider has been selected yet.
const DefaultProvider = "local"

// ModelStatus records the active provider, its configuration and the state of the
// on-device model. At most one is persisted.
type ModelStatus struct {
	ModelPath      *string
	ProviderConfig map[string]string
	Provider       string
	IsLoaded       bool
}

// DefaultModelStatus is what reading an empty status table yields.
func DefaultModelStatus() ModelStatus {
	return ModelStatus{
		Provider:       DefaultProvider,
		ProviderConfig: map[string]string{},
	}
}

// IsLocal reports whether the on-device model is the active provider.
func (s ModelStatus) IsLocal() bool {
	return s.Provider == DefaultProvider
}
