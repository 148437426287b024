package domain

// ExtractionRequest is the payload for the external OCR function. The image
// is a base64-encoded JPEG/PNG, optionally with a data-URL prefix.
type ExtractionRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// OCRFields holds the raw per-field OCR text before numeric parsing.
// A nil entry means the engine produced no text for that field.
type OCRFields struct {
	Sys *string `json:"sys"`
	Dia *string `json:"dia"`
	Pul *string `json:"pul"`
}

// ExtractionResult is the structured best-guess reading returned by the
// external OCR step, together with its image-quality and multi-engine
// agreement signals. The classification core never consumes this directly;
// the form layer assembles a Reading after the user confirms the values.
type ExtractionResult struct {
	Timestamp     string              `json:"timestamp"`
	GlareDetected bool                `json:"glare_detected"`
	Variance      float64             `json:"variance"`
	ImageURL      string              `json:"image_url,omitempty"`
	HeatmapURL    string              `json:"heatmap_url,omitempty"`
	OCRRaw        OCRFields           `json:"ocr_raw"`
	Consensus     bool                `json:"consensus"`
	OCRAlternates map[string][]string `json:"ocr_alternates,omitempty"`
	Systolic      *int                `json:"systolic"`
	Diastolic     *int                `json:"diastolic"`
	Pulse         *int                `json:"pulse"`
}

// Complete reports whether all three numeric fields parsed, i.e. the form can
// be pre-filled without manual correction.
func (r *ExtractionResult) Complete() bool {
	return r.Systolic != nil && r.Diastolic != nil && r.Pulse != nil
}

// Suspect reports whether the UI should ask the user to double-check the
// extracted values before accepting them.
func (r *ExtractionResult) Suspect() bool {
	return r.GlareDetected || !r.Consensus || !r.Complete()
}
