package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	ttsEndpoint       = "https://translate.google.com/translate_tts"
	ttsRequestTimeout = 10 * time.Second
	userAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// TTSService generates pronunciation audio and caches it as MP3 files
type TTSService struct {
	audioDir string
	language string
	endpoint string
	client   *http.Client
}

// NewTTSService creates a TTS service writing into audioDir
func NewTTSService(audioDir, language string) *TTSService {
	if language == "" {
		language = "en"
	}
	return &TTSService{
		audioDir: audioDir,
		language: language,
		endpoint: ttsEndpoint,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// CacheName returns the file name generated audio for text is stored under
func CacheName(text string) string {
	sanitized := strings.ToLower(strings.TrimSpace(text))
	sanitized = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_").Replace(sanitized)
	return fmt.Sprintf("word_%s.mp3", sanitized)
}

// Generate returns the path of an MP3 speaking text, fetching it on first use
func (s *TTSService) Generate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text to speak")
	}

	path := filepath.Join(s.audioDir, CacheName(text))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	if err := s.download(ctx, s.endpoint+"?"+params.Encode(), path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return path, nil
}

// download fetches rawURL into outputPath, leaving no partial file on failure
func (s *TTSService) download(ctx context.Context, rawURL, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return os.Rename(tmp.Name(), outputPath)
}

// CachedFiles returns the MP3 files in the audio directory
func (s *TTSService) CachedFiles() ([]string, error) {
	files, err := os.ReadDir(s.audioDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
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

// Prefetch generates audio for every word, stopping at the first failure
func (s *TTSService) Prefetch(ctx context.Context, words []string) (map[string]string, error) {
	results := make(map[string]string, len(words))

	for _, word := range words {
		path, err := s.Generate(ctx, word)
		if err != nil {
			return results, fmt.Errorf("failed to generate audio for '%s': %w", word, err)
		}
		results[word] = path
	}

	return results, nil
}
