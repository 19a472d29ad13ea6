package podcast

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Synthesizer converts SSML to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, ssml string) ([]byte, error)
}

// AzureSynthesizer calls the Azure Cognitive Services text-to-speech REST
// endpoint and returns MP3 audio.
type AzureSynthesizer struct {
	key      string
	endpoint string
	client   *http.Client
}

const outputFormat = "audio-16khz-128kbitrate-mono-mp3"

// NewAzureSynthesizer builds a client for the given region endpoint, e.g.
// https://eastus.tts.speech.microsoft.com/cognitiveservices/v1.
func NewAzureSynthesizer(key, endpoint string, timeout time.Duration) *AzureSynthesizer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AzureSynthesizer{
		key:      key,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (a *AzureSynthesizer) Synthesize(ctx context.Context, ssml string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", outputFormat)
	req.Header.Set("User-Agent", "docsift")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts service returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts service returned empty audio")
	}
	return audio, nil
}
