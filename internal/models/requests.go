package models

type GenerateVideoRequest struct {
	Prompt   string `json:"prompt" validate:"required"`
	ImageURL string `json:"imageUrl"`
}

type CheckVideoStatusRequest struct {
	GenerationID string `json:"generation_id" validate:"required"`
}

type GenerateImageRequest struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"imageUrl"`
}

type CreatePaymentRequest struct {
	PriceID     string `json:"priceId" validate:"required"`
	PackageType string `json:"packageType" validate:"required"`
}

type VerifyPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type EnhancePromptRequest struct {
	ImageDecade           string `json:"image_decade"`
	MainSubject           string `json:"main_subject" validate:"required"`
	ImageDescription      string `json:"image_description"`
	DesiredMovement       string `json:"desired_movement"`
	DesiredStyle          string `json:"desired_style"`
	CurrentPromptFeedback string `json:"current_prompt_feedback"`
}

type RunwayGenerateRequest struct {
	ImageAssetID string `json:"image_asset_id"`
	TextPrompt   string `json:"text_prompt" validate:"required"`
	AspectRatio  string `json:"aspect_ratio"`
	ImageURL     string `json:"imageUrl"`
}

type RunwayStatusRequest struct {
	TaskID string `json:"task_id" validate:"required"`
}
