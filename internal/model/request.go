package model

// Input types accepted by the analyze-step endpoint
const (
	InputImage       = "image"
	InputText        = "text"
	InputFieldUpdate = "field_update"
)

// AnalyzeStepRequest carries the current form state and an optional new input
type AnalyzeStepRequest struct {
	CurrentData map[string]any `json:"current_data"`
	NewInput    *string        `json:"new_input,omitempty"` // Text snippet or base64 image
	InputType   string         `json:"input_type" binding:"required,input_type"`
	ImageURL    *string        `json:"image_url,omitempty"` // Object key of an uploaded photo
	Locale      string         `json:"locale,omitempty" binding:"omitempty,locale"`
}

// AnalyzeStepResponse tells the client what was inferred and what to ask next
type AnalyzeStepResponse struct {
	ExtractedData        map[string]any     `json:"extracted_data"`
	UISchema             []FieldDefinition  `json:"ui_schema"`
	AIMessage            string             `json:"ai_message"`
	ConfidenceScores     map[string]float64 `json:"confidence_scores,omitempty"`
	Suggestions          []FieldSuggestion  `json:"suggestions,omitempty"`
	StepNumber           int                `json:"step_number"`
	CompletionPercentage float64            `json:"completion_percentage"`
}

// AnalyzeImagesRequest carries base64 photos to analyze as one property
type AnalyzeImagesRequest struct {
	Images     []string `json:"images,omitempty" binding:"omitempty,dive,required"`
	ObjectKeys []string `json:"object_keys,omitempty" binding:"omitempty,dive,required"`
}

// UploadResponse describes a photo stored in the object store
type UploadResponse struct {
	ObjectKey   string `json:"object_key"`
	URL         string `json:"url,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// SaveListingRequest is the finished form plus its photos
type SaveListingRequest struct {
	FormData  map[string]any      `json:"form_data" binding:"required"`
	Images    []ListingImageInput `json:"images,omitempty" binding:"omitempty,dive"`
	Synthesis *PropertyOverview   `json:"synthesis,omitempty"`
}

// ListingImageInput is one photo of a listing being saved
type ListingImageInput struct {
	ImageData string         `json:"image_data,omitempty"` // base64
	ObjectKey string         `json:"object_key,omitempty"`
	ImageURL  string         `json:"image_url,omitempty"`
	Analysis  *ImageAnalysis `json:"analysis,omitempty"`
}

// SaveListingResponse is returned after a listing is stored
type SaveListingResponse struct {
	ID          int64             `json:"id"`
	ListingUUID string            `json:"listing_uuid"`
	ImageCount  int               `json:"image_count"`
	Synthesis   *PropertyOverview `json:"synthesis,omitempty"`
	Embedded    bool              `json:"embedded"`
}

// DescriptionRequest submits a free-text description
type DescriptionRequest struct {
	Text string `json:"text" binding:"required"`
}

// EmbeddingBatchRequest asks to (re)compute description embeddings
type EmbeddingBatchRequest struct {
	ListingIDs []int64 `json:"listing_ids,omitempty"` // Empty means all listings without an embedding
	Limit      int     `json:"limit,omitempty" binding:"omitempty,min=1,max=1000"`
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// FieldCatalogResponse lists the fields available for a property type
type FieldCatalogResponse struct {
	PropertyType string            `json:"property_type,omitempty"`
	Fields       []FieldDefinition `json:"fields"`
}
