package domain

type StageMetadata struct {
	Metrics    map[string]any `json:"metrics" yaml:"metrics"`
	UIMetadata map[string]any `json:"ui_metadata" yaml:"ui_metadata"`
}

// Metadata is served verbatim from the loaded stage configs.
type Metadata struct {
	Stage1 StageMetadata `json:"stage1" yaml:"stage1"`
	Stage2 StageMetadata `json:"stage2" yaml:"stage2"`
}
