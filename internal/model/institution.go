package model

// Institution is a survey target. It is static input and is not modified
// during a run. Institutions are identified by Name within a run.
type Institution struct {
	// Name is the institution's display name. Unique within a survey file.
	Name string `json:"name" yaml:"name"`

	// URL is the homepage to start from. Must be an absolute http(s) URL.
	URL string `json:"url" yaml:"url"`

	// Country is reported as-is; it is never inferred.
	Country string `json:"country,omitempty" yaml:"country,omitempty"`

	// Label is a free-form tag such as "control" for the reference institution.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Language is an optional hint shown when detection finds nothing.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}
