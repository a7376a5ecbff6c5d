package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/pkg/hash"
)

const pinataPinURL = "https://api.pinata.cloud/pinning/pinFileToIPFS"

// ErrContentNotFound is returned when no stored content matches a hash.
var ErrContentNotFound = errors.New("content not found")

// ContentService stores article bodies addressed by content hash. With
// Pinata credentials configured it pins to IPFS and fetches through the
// configured gateway; without them it falls back to an in-memory
// content-addressed store so development needs no external service.
type ContentService struct {
	apiKey    string
	secretKey string
	gateway   string
	pinURL    string
	client    *http.Client

	mu    sync.RWMutex
	local map[string][]byte
}

// NewContentService creates a content store. apiKey and secretKey may be
// empty, which enables local mode.
func NewContentService(apiKey, secretKey, gateway string) *ContentService {
	if apiKey == "" || secretKey == "" {
		middleware.Logger.Info().Msg("content: no pinning credentials, using local store")
	}
	return &ContentService{
		apiKey:    apiKey,
		secretKey: secretKey,
		gateway:   gateway,
		pinURL:    pinataPinURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		local:     make(map[string][]byte),
	}
}

// Remote reports whether an IPFS pinning service is configured.
func (s *ContentService) Remote() bool {
	return s.apiKey != "" && s.secretKey != ""
}

// Pin stores the content and returns its hash.
func (s *ContentService) Pin(ctx context.Context, filename string, data []byte) (string, error) {
	if !s.Remote() {
		id := hash.ContentID(data)
		s.mu.Lock()
		s.local[id] = append([]byte(nil), data...)
		s.mu.Unlock()
		return id, nil
	}
	return s.pinRemote(ctx, filename, data)
}

// Fetch returns the content for a hash.
func (s *ContentService) Fetch(ctx context.Context, contentHash string) ([]byte, error) {
	if hash.IsLocalContentID(contentHash) || !s.Remote() {
		s.mu.RLock()
		data, ok := s.local[contentHash]
		s.mu.RUnlock()
		if !ok {
			return nil, ErrContentNotFound
		}
		return data, nil
	}
	return s.fetchGateway(ctx, contentHash)
}

// pinRemote uploads a multipart form to the Pinata pinning endpoint, the
// way the original upload proxy did.
func (s *ContentService) pinRemote(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pinURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("pinata_api_key", s.apiKey)
	req.Header.Set("pinata_secret_api_key", s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("content: pin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("content: pin failed with status %d: %s", resp.StatusCode, b)
	}

	var pin struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pin); err != nil {
		return "", fmt.Errorf("content: decode pin response: %w", err)
	}
	if pin.IpfsHash == "" {
		return "", errors.New("content: pin response missing IpfsHash")
	}
	return pin.IpfsHash, nil
}

func (s *ContentService) fetchGateway(ctx context.Context, contentHash string) ([]byte, error) {
	url := fmt.Sprintf("%s/ipfs/%s", s.gateway, contentHash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrContentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content: gateway returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
