package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"wordmastery/internal/models"
)

// DefaultEndpoint is Google Translate's speech endpoint; it needs no API key
const DefaultEndpoint = "https://translate.google.com/translate_tts"

const ttsRequestTimeout = 10 * time.Second

// Synthesizer keeps one MP3 per word on disk for the listening questions
type Synthesizer struct {
	audioDir string
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// PrefetchResult counts what a prefetch did
type PrefetchResult struct {
	Generated int
	Cached    int
	Failed    []int64
}

// NewSynthesizer creates a synthesizer writing into audioDir. An empty endpoint
// uses DefaultEndpoint.
func NewSynthesizer(audioDir, endpoint string, log *zap.Logger) *Synthesizer {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{
		audioDir: audioDir,
		endpoint: endpoint,
		client:   &http.Client{Timeout: ttsRequestTimeout},
		log:      log,
	}
}

// FileName is the cache file of a word, relative to the audio directory
func FileName(wordID int64) string {
	return "word_" + strconv.FormatInt(wordID, 10) + ".mp3"
}

// Ensure returns the word's audio file, synthesizing the English headword when
// it is not cached yet. created reports whether a file was written.
func (s *Synthesizer) Ensure(ctx context.Context, w models.Word) (filename string, created bool, err error) {
	filename = FileName(w.ID)
	path := filepath.Join(s.audioDir, filename)
	if _, err := os.Stat(path); err == nil {
		return filename, false, nil
	}
	if err := os.MkdirAll(s.audioDir, 0755); err != nil {
		return "", false, fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := s.fetch(ctx, w.English, path); err != nil {
		return "", false, fmt.Errorf("failed to generate audio for word %d: %w", w.ID, err)
	}
	return filename, true, nil
}

// Prefetch makes sure every word has audio. A failed word is logged and
// recorded, and the rest are still processed; only ctx cancellation stops early.
func (s *Synthesizer) Prefetch(ctx context.Context, words []models.Word) (*PrefetchResult, error) {
	res := &PrefetchResult{}
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, created, err := s.Ensure(ctx, w)
		switch {
		case err != nil:
			s.log.Warn("audio generation failed", zap.Int64("word_id", w.ID), zap.Error(err))
			res.Failed = append(res.Failed, w.ID)
		case created:
			res.Generated++
		default:
			res.Cached++
		}
	}
	s.log.Info("audio prefetch finished",
		zap.Int("generated", res.Generated), zap.Int("cached", res.Cached), zap.Int("failed", len(res.Failed)))
	return res, nil
}

// fetch writes the synthesized speech for text to outputPath. The file is
// written under a temporary name first so a failed download leaves no entry.
func (s *Synthesizer) fetch(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", strconv.Itoa(len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// required by Google
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tmp := outputPath + ".part"
	outFile, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(outFile, resp.Body); err != nil {
		outFile.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp, outputPath)
}

// Remove deletes a word's audio file. A missing file is not an error.
func (s *Synthesizer) Remove(wordID int64) error {
	err := os.Remove(filepath.Join(s.audioDir, FileName(wordID)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Files returns the MP3 files in the audio directory
func (s *Synthesizer) Files() ([]string, error) {
	files, err := os.ReadDir(s.audioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	var audioFiles []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".mp3" {
			audioFiles = append(audioFiles, file.Name())
		}
	}
	return audioFiles, nil
}
