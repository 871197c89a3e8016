package extraction

import (
	"context"
	"errors"
	"log/slog"

	"moviepicker/internal/logging"
	"moviepicker/internal/metrics"
	"moviepicker/internal/services/llm"
)

const (
	visionTemperature = 0.2
	visionMaxTokens   = 2000
)

// Mention is one movie the model found in a reel.
type Mention struct {
	TitleRU     string `json:"title_ru"`
	TitleEN     string `json:"title_en"`
	Description string `json:"description"`
}

// Input is what the extractor knows about a reel.
type Input struct {
	Transcript string
	Caption    string
	Frames     []string
	Vision     bool
}

// Completer issues chat completions.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Config selects the models used for extraction.
type Config struct {
	VisionModel       string
	SearchModel       string
	SearchContextSize string
}

// Extractor asks a generative model for the movies mentioned in a reel.
type Extractor struct {
	cfg       Config
	completer Completer
	logger    *slog.Logger
}

// New constructs an extractor.
func New(cfg Config, completer Completer, logger *slog.Logger) *Extractor {
	return &Extractor{
		cfg:       cfg,
		completer: completer,
		logger:    logging.NewComponentLogger(logger, "extraction"),
	}
}

// Extract returns the mentions found in the input. Unparseable model output
// yields an empty list; call failures are returned.
func (e *Extractor) Extract(ctx context.Context, in Input) ([]Mention, error) {
	text := BuildUserText(in.Transcript, in.Caption)
	if text == "" {
		return []Mention{}, nil
	}

	req := e.buildRequest(ctx, text, in)
	raw, err := e.completer.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyContent) {
			logging.WarnWithContext(logging.WithContext(ctx, e.logger), "model returned no content", "extraction_empty",
				logging.String(logging.FieldImpact, "no movies extracted from this reel"))
			return []Mention{}, nil
		}
		return nil, err
	}

	result := ParseMentions(raw)
	if result.Failed {
		metrics.ExtractionParseFailures.Inc()
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "model output is not valid JSON", "extraction_parse_failed",
			logging.String("snippet", result.Snippet),
			logging.String(logging.FieldImpact, "no movies extracted from this reel"),
			logging.String(logging.FieldErrorHint, "retry the reel or switch openai.search_model"),
		)
		return result.Mentions, nil
	}
	metrics.MentionsExtracted.Observe(float64(len(result.Mentions)))
	return result.Mentions, nil
}

func (e *Extractor) buildRequest(ctx context.Context, text string, in Input) llm.Request {
	var images []string
	if in.Vision {
		images = e.encodeFrames(ctx, in.Frames)
	}
	if len(images) > 0 {
		temperature := visionTemperature
		return llm.Request{
			Model:       e.cfg.VisionModel,
			System:      SystemPrompt,
			User:        text,
			Images:      images,
			Temperature: &temperature,
			MaxTokens:   visionMaxTokens,
		}
	}
	return llm.Request{
		Model:             e.cfg.SearchModel,
		System:            SystemPrompt,
		User:              text,
		SearchContextSize: e.cfg.SearchContextSize,
	}
}

// encodeFrames returns data URLs for the readable frames; unreadable ones are
// logged and skipped.
func (e *Extractor) encodeFrames(ctx context.Context, frames []string) []string {
	images := make([]string, 0, len(frames))
	for _, frame := range frames {
		dataURL, err := llm.EncodeImageFile(frame)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, e.logger), "frame skipped", "frame_unreadable",
				logging.String("frame", frame),
				logging.Error(err),
				logging.String(logging.FieldImpact, "extraction runs with fewer frames"),
			)
			continue
		}
		images = append(images, dataURL)
	}
	return images
}
