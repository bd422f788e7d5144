package analyzer

import "media-engine-backend/service/ai"

// DefaultRegistry wires one analyzer per media type, in dispatch
// order. The fallback matches everything and must stay last.
func DefaultRegistry(backend ai.Backend, enhancer Enhancer) []Analyzer {
	return []Analyzer{
		NewImageAnalyzer(backend),
		NewVideoAnalyzer(backend, enhancer),
		NewDocumentAnalyzer(backend),
		NewAudioAnalyzer(backend),
		NewEmailAnalyzer(backend),
		NewArchiveAnalyzer(backend),
		NewCodeAnalyzer(backend),
		NewFallbackAnalyzer(),
	}
}
