// ABOUTME: Orchestrator: content-type short-circuits, then all six extractors under a global floor
// ABOUTME: Deterministic winner selection; fields are extracted for the winning category only

package intent

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/mauromedda/concierge-go/internal/content"
)

// Fixed confidences for content types the acquisition layer already disambiguated.
const (
	urlConfidence   = 1.0
	fileConfidence  = 1.0
	imageConfidence = 0.7
)

// ClassifierConfig holds configuration for the intent classifier.
type ClassifierConfig struct {
	GlobalFloor   float64 // Winning score below this yields IntentNone (default 0.3).
	PreviewLength int     // Preview bound in grapheme clusters (default content.PreviewLength).
}

// Classifier turns content into a ranked, explained Result.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a classifier with the given config, applying defaults.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.GlobalFloor == 0 {
		cfg.GlobalFloor = 0.3
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = content.PreviewLength
	}
	return &Classifier{config: cfg}
}

// Classify determines the intent of captured content.
// Strategy: empty content is IntentNone; url/file/image types short-circuit to
// a fixed classification; text runs every extractor and the strictly highest
// score wins, with ties going to the earlier category in priority order.
func (c *Classifier) Classify(text string, typ content.Type) Result {
	if strings.TrimSpace(text) == "" {
		return noneResult()
	}

	switch typ {
	case content.TypeURL:
		return urlResult(text)
	case content.TypeFile:
		return fileResult(text)
	case content.TypeImage:
		return imageResult()
	}

	var (
		best      category
		bestScore PartialScore
		found     bool
	)
	for _, cat := range priority {
		ps := cat.score(text)
		if !found || ps.Score > bestScore.Score {
			best, bestScore, found = cat, ps, true
		}
	}

	if bestScore.Score < c.config.GlobalFloor {
		return noneResult()
	}

	fields := best.extract(text)
	return Result{
		Intent:     best.intent,
		Confidence: bestScore.Score,
		Header:     best.header,
		Signals:    bestScore.Signals,
		Actions:    best.actions(fields),
		Fields:     fields,
		Preview:    content.Truncate(text, c.config.PreviewLength),
	}
}

func urlResult(raw string) Result {
	raw = strings.TrimSpace(raw)
	fields := map[string]string{"url": raw}
	if d := registrableDomain(raw); d != "" {
		fields["domain"] = d
	}
	return Result{
		Intent:     IntentOpenURL,
		Confidence: urlConfidence,
		Signals:    []Signal{{Name: "content_type", Weight: urlConfidence, Detail: "URL detected in clipboard"}},
		Actions:    []Action{ActionOpenInBrowser},
		Fields:     fields,
		Preview:    raw,
	}
}

func fileResult(path string) Result {
	path = strings.TrimSpace(path)
	return Result{
		Intent:     IntentFile,
		Confidence: fileConfidence,
		Signals:    []Signal{{Name: "content_type", Weight: fileConfidence, Detail: "File path detected in clipboard"}},
		Actions:    []Action{ActionOpenFile, ActionShowInFolder},
		Fields:     map[string]string{"path": path},
		Preview:    path,
	}
}

func imageResult() Result {
	return Result{
		Intent:     IntentImage,
		Confidence: imageConfidence,
		Signals:    []Signal{{Name: "content_type", Weight: imageConfidence, Detail: "Image detected in clipboard - may contain text or error"}},
		Actions:    []Action{ActionExtractText, ActionSearchImage},
		Fields:     map[string]string{},
		Preview:    "[Image]",
	}
}

// registrableDomain returns the eTLD+1 of a URL ("docs.python.org" -> "python.org").
func registrableDomain(raw string) string {
	if strings.HasPrefix(strings.ToLower(raw), "www.") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	if net.ParseIP(u.Hostname()) != nil {
		return u.Hostname()
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
	if err != nil {
		return u.Hostname()
	}
	return d
}
