package ai

// Wire types for the external AI inference service. Field names
// mirror the service's JSON contract.

type AnalyzeImageRequest struct {
	ImagePath   string `json:"image_path"`
	UseOllama   bool   `json:"use_ollama"`
	DetectFaces bool   `json:"detect_faces"`
}

type ImageAnalysis struct {
	Description         string      `json:"description"`
	DetailedDescription string      `json:"detailed_description,omitempty"`
	MetaTags            []string    `json:"meta_tags"`
	Embedding           []float32   `json:"embedding,omitempty"`
	FacesDetected       int         `json:"faces_detected"`
	FaceLocations       [][]int     `json:"face_locations"`
	FaceEncodings       [][]float64 `json:"face_encodings"`
	ThumbnailPath       string      `json:"thumbnail_path,omitempty"`
	ExtractedText       string      `json:"extracted_text,omitempty"`
}

type AnalyzeVideoRequest struct {
	VideoPath     string `json:"video_path"`
	ExtractFrames bool   `json:"extract_frames"`
	FrameInterval int    `json:"frame_interval,omitempty"`
}

type SceneDescription struct {
	FrameIndex  int    `json:"frame_index"`
	Description string `json:"description"`
}

type VideoAnalysis struct {
	DurationSeconds   float64            `json:"duration_seconds"`
	FrameCount        int                `json:"frame_count"`
	FPS               float64            `json:"fps"`
	Resolution        string             `json:"resolution"`
	SceneDescriptions []SceneDescription `json:"scene_descriptions"`
	Embedding         []float32          `json:"embedding,omitempty"`
	ObjectsDetected   []string           `json:"objects_detected"`
	ThumbnailPath     string             `json:"thumbnail_path,omitempty"`
}

type AnalyzeDocumentRequest struct {
	DocumentPath string `json:"document_path"`
	PerformOCR   bool   `json:"perform_ocr"`
	UseOllama    bool   `json:"use_ollama"`
}

type DocumentAnalysis struct {
	ExtractedText            string         `json:"extracted_text"`
	PageCount                int            `json:"page_count,omitempty"`
	Summary                  string         `json:"summary,omitempty"`
	Keywords                 []string       `json:"keywords"`
	Embedding                []float32      `json:"embedding,omitempty"`
	ThumbnailPath            string         `json:"thumbnail_path,omitempty"`
	DocumentType             string         `json:"document_type,omitempty"`
	ClassificationConfidence float64        `json:"classification_confidence,omitempty"`
	Entities                 map[string]any `json:"entities,omitempty"`
}

type TranscribeAudioRequest struct {
	AudioPath string `json:"audio_path"`
	Language  string `json:"language,omitempty"`
}

type AudioTranscription struct {
	Text          string    `json:"text"`
	Language      string    `json:"language"`
	Confidence    float64   `json:"confidence"`
	Embedding     []float32 `json:"embedding,omitempty"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
}

type ExtractEmailRequest struct {
	FilePath string `json:"file_path"`
}

type EmailExtraction struct {
	Sender          string   `json:"sender,omitempty"`
	Recipients      []string `json:"recipients"`
	Subject         string   `json:"subject,omitempty"`
	Date            string   `json:"date,omitempty"`
	Body            string   `json:"body"`
	AttachmentCount int      `json:"attachment_count"`
	HasHTML         bool     `json:"has_html"`
}

type ExtractArchiveMetadataRequest struct {
	FilePath string `json:"file_path"`
}

type ArchiveMetadata struct {
	FileCount int            `json:"file_count"`
	TotalSize int64          `json:"total_size"`
	FileTypes map[string]int `json:"file_types"`
}

type AnalyzeCodeFileRequest struct {
	FilePath string `json:"file_path"`
}

type CodeAnalysis struct {
	Language      string `json:"language"`
	LineCount     int    `json:"line_count"`
	CodeLines     int    `json:"code_lines"`
	CommentLines  int    `json:"comment_lines"`
	BlankLines    int    `json:"blank_lines"`
	FileSize      int64  `json:"file_size"`
	Encoding      string `json:"encoding"`
	ExtractedText string `json:"extracted_text"`
}

type embedTextRequest struct {
	Query string `json:"query"`
}

type embedTextResponse struct {
	Embedding []float32 `json:"embedding"`
}
