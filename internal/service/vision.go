package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"listingguide/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// VisionAnalyzer turns one photo into an analysis record
type VisionAnalyzer interface {
	Analyze(ctx context.Context, image []byte) (*model.ImageAnalysis, error)
	Name() string
}

// AnalysisCache stores analyses keyed by image content
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*model.ImageAnalysis, bool, error)
	Set(ctx context.Context, key string, analysis *model.ImageAnalysis) error
}

// PhotoStore keeps uploaded listing photos
type PhotoStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// ImageAnalyzerOptions bounds the fan-out over a photo batch
type ImageAnalyzerOptions struct {
	Concurrency       int
	Timeout           time.Duration
	RequestsPerSecond float64 // zero disables pacing
	MaxImages         int
	MaxImageBytes     int
}

// ImageAnalyzer runs the vision provider over single photos and batches
type ImageAnalyzer struct {
	vision  VisionAnalyzer
	synth   *Synthesizer
	cache   AnalysisCache
	store   PhotoStore
	limiter *rate.Limiter
	opts    ImageAnalyzerOptions
	logger  *zap.Logger
}

// NewImageAnalyzer creates an analyzer; cache and store are optional
func NewImageAnalyzer(vision VisionAnalyzer, synth *Synthesizer, cache AnalysisCache, store PhotoStore, opts ImageAnalyzerOptions, logger *zap.Logger) *ImageAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if synth == nil {
		synth = NewSynthesizer(logger)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = 20
	}

	a := &ImageAnalyzer{
		vision: vision,
		synth:  synth,
		cache:  cache,
		store:  store,
		opts:   opts,
		logger: logger,
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return a
}

// Enabled reports whether a vision provider is configured
func (a *ImageAnalyzer) Enabled() bool {
	return a != nil && a.vision != nil
}

// Provider names the configured vision provider
func (a *ImageAnalyzer) Provider() string {
	if !a.Enabled() {
		return ""
	}
	return a.vision.Name()
}

// AnalyzeOne analyzes a single photo, consulting the cache first
func (a *ImageAnalyzer) AnalyzeOne(ctx context.Context, index int, data []byte) (model.ImageAnalysis, error) {
	if !a.Enabled() {
		return model.ImageAnalysis{}, ErrVisionDisabled
	}
	if len(data) == 0 {
		return model.ImageAnalysis{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if a.opts.MaxImageBytes > 0 && len(data) > a.opts.MaxImageBytes {
		return model.ImageAnalysis{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidImage, len(data), a.opts.MaxImageBytes)
	}

	key := a.cacheKey(data)
	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			a.logger.Warn("analysis cache read failed", zap.Error(err))
		} else if ok {
			cached.ImageIndex = index
			return *cached, nil
		}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return model.ImageAnalysis{}, fmt.Errorf("waiting for vision rate limit: %w", err)
		}
	}

	callCtx := ctx
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := a.vision.Analyze(callCtx, data)
	if err != nil {
		return model.ImageAnalysis{}, fmt.Errorf("%s vision analysis failed: %w", a.vision.Name(), err)
	}
	normalizeAnalysis(result)
	result.ImageIndex = index

	a.logger.Debug("image analyzed",
		zap.String("provider", a.vision.Name()),
		zap.Int("index", index),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, result); err != nil {
			a.logger.Warn("analysis cache write failed", zap.Error(err))
		}
	}
	return *result, nil
}

// AnalyzeBatch analyzes every photo concurrently and synthesizes the results.
// A photo that fails becomes a placeholder; only caller cancellation fails the batch.
// onResult, when set, is called once per finished photo, never concurrently.
func (a *ImageAnalyzer) AnalyzeBatch(ctx context.Context, images [][]byte, onResult func(model.ImageAnalysis)) (*model.BatchAnalysis, error) {
	if !a.Enabled() {
		return nil, ErrVisionDisabled
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if len(images) > a.opts.MaxImages {
		return nil, fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyImages, len(images), a.opts.MaxImages)
	}

	batchID := uuid.NewString()
	results := make([]model.ImageAnalysis, len(images))
	var (
		mu     sync.Mutex
		failed int
	)

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i, data := range images {
		g.Go(func() error {
			res, err := a.AnalyzeOne(ctx, i, data)
			if err != nil {
				a.logger.Warn("image analysis failed",
					zap.String("batch_id", batchID),
					zap.Int("index", i),
					zap.Error(err),
				)
				res = model.FailedAnalysis(i, err)
			}
			results[i] = res

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			}
			if onResult != nil {
				onResult(res)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch %s cancelled: %w", batchID, err)
	}

	overview := a.synth.Synthesize(results)
	a.logger.Info("image batch analyzed",
		zap.String("batch_id", batchID),
		zap.Int("images", len(images)),
		zap.Int("failed", failed),
	)

	return &model.BatchAnalysis{
		BatchID:     batchID,
		Analyses:    results,
		Synthesis:   overview,
		FailedCount: failed,
	}, nil
}

// LoadImage fetches a stored photo by object key
func (a *ImageAnalyzer) LoadImage(ctx context.Context, key string) ([]byte, error) {
	if a == nil || a.store == nil {
		return nil, ErrStorageDisabled
	}
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", key, err)
	}
	return data, nil
}

// StoreImage uploads a photo and returns its URL
func (a *ImageAnalyzer) StoreImage(ctx context.Context, key string, data []byte) (string, error) {
	if a == nil || a.store == nil {
		return "", ErrStorageDisabled
	}
	url, err := a.store.Put(ctx, key, data, DetectContentType(data))
	if err != nil {
		return "", fmt.Errorf("failed to store image %s: %w", key, err)
	}
	return url, nil
}

func (a *ImageAnalyzer) cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return a.vision.Name() + ":" + hex.EncodeToString(sum[:])
}

// DecodeImage decodes a base64 payload, with or without a data URI prefix
func DecodeImage(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: malformed data URI", ErrInvalidImage)
		}
		s = s[comma+1:]
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, errors.Join(err, rawErr))
		}
	}
	return data, nil
}

// DecodeImages decodes a list of base64 payloads
func DecodeImages(encoded []string) ([][]byte, error) {
	out := make([][]byte, len(encoded))
	for i, s := range encoded {
		data, err := DecodeImage(s)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}

// normalizeAnalysis fills the collections a provider may leave nil
func normalizeAnalysis(a *model.ImageAnalysis) {
	if a.Rooms == nil {
		a.Rooms = map[string]int{}
	}
	for kind, n := range a.Rooms {
		if n < 0 {
			delete(a.Rooms, kind)
		}
	}
	if a.Amenities == nil {
		a.Amenities = []string{}
	}
	if a.Materials == nil {
		a.Materials = []string{}
	}
	a.Condition = model.ParseCondition(string(a.Condition))
}

// DetectContentType sniffs the image MIME type, defaulting to JPEG
func DetectContentType(data []byte) string {
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return "image/jpeg"
	}
	return ct
}
