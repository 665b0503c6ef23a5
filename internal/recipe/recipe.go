package recipe

// Modes a job can run in.
const (
	ModeEncode = "encode"
	ModeDecode = "decode"
)

// Version is written into new recipes.
const Version = "1.0"

// Recipe is a list of batch jobs.
type Recipe struct {
	Version string `yaml:"version"`
	Jobs    []Job  `yaml:"jobs"`
}

// Job describes one image to process. Nil fields inherit the configured
// defaults when the job is resolved.
type Job struct {
	Input     string   `yaml:"input"`
	Page      int      `yaml:"page,omitempty"`   // 0-based, PDFs only
	Output    string   `yaml:"output,omitempty"` // defaults to <name>_<mode>.png in the output dir
	Mode      string   `yaml:"mode,omitempty"`   // encode (default) or decode
	Message   string   `yaml:"message,omitempty"`
	Strength  *float64 `yaml:"strength,omitempty"`
	HOffset   *float64 `yaml:"h_offset,omitempty"`
	VOffset   *float64 `yaml:"v_offset,omitempty"`
	FontSize  *int     `yaml:"font_size,omitempty"`
	Font      string   `yaml:"font,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	Intensity *float64 `yaml:"intensity,omitempty"`
}
