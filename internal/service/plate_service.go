package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"plate-slip-service/internal/config"
	"plate-slip-service/internal/domain/plate"
	"plate-slip-service/internal/render"
	"plate-slip-service/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRenderFailed = errors.New("failed to render parking slip")
)

// Locator yields plate candidates in the detector's native ranking order.
type Locator interface {
	Detect(ctx context.Context, imageData []byte) ([]plate.Candidate, error)
}

// Recognizer yields text spans for a cropped region in emission order.
type Recognizer interface {
	Recognize(ctx context.Context, region image.Image) ([]plate.TextSpan, error)
}

// PlateService runs the detection, extraction, filtering and rendering
// pipeline for one uploaded image at a time. Processing is synchronous and
// strictly forward; the HTTP layer owns concurrent fan-out.
type PlateService struct {
	locator    Locator
	recognizer Recognizer
	renderer   *render.SlipRenderer
	store      *storage.ArtifactStore
	mirror     *storage.ObjectStore
	cfg        *config.Config
	log        zerolog.Logger
	now        func() time.Time
}

func NewPlateService(
	locator Locator,
	recognizer Recognizer,
	renderer *render.SlipRenderer,
	store *storage.ArtifactStore,
	mirror *storage.ObjectStore,
	cfg *config.Config,
	log zerolog.Logger,
) *PlateService {
	return &PlateService{
		locator:    locator,
		recognizer: recognizer,
		renderer:   renderer,
		store:      store,
		mirror:     mirror,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Process runs the full pipeline on one uploaded image.
//
// Absence of a plate is a normal outcome: the result carries NoPlate=true and
// err is nil. A collapsed crop degrades to the crop-error sentinel and the
// slip is still rendered. Only undecodable input, engine failures and slip
// persistence failures are errors.
func (s *PlateService) Process(ctx context.Context, imageData []byte) (*plate.RecognitionResult, error) {
	requestID := uuid.New()
	log := s.log.With().Str("request_id", requestID.String()).Logger()

	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: empty image upload", ErrInvalidInput)
	}

	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode image: %v", ErrInvalidInput, err)
	}
	bounds := img.Bounds()

	candidates, err := s.locator.Detect(ctx, imageData)
	if err != nil {
		log.Error().Err(err).Msg("plate detection failed")
		return nil, fmt.Errorf("plate detection: %w", err)
	}

	box, found := plate.SelectCandidate(candidates, s.cfg.Detector.Selection)
	if !found {
		log.Info().Msg("no number plate detected")
		return &plate.RecognitionResult{RequestID: requestID, NoPlate: true}, nil
	}
	log.Debug().
		Int("candidates", len(candidates)).
		Str("selection", string(s.cfg.Detector.Selection)).
		Interface("box", box).
		Msg("selected plate candidate")

	var crop image.Image
	var reading plate.Reading
	rect, ok := plate.PaddedRect(box, s.cfg.CropPadding, bounds.Dx(), bounds.Dy())
	if !ok {
		log.Warn().Interface("box", box).Msg("crop collapsed to zero area, skipping recognition")
		reading = plate.CropErrorReading()
	} else {
		crop = imaging.Crop(img, rect)
		spans, err := s.recognizer.Recognize(ctx, crop)
		if err != nil {
			log.Error().Err(err).Msg("text recognition failed")
			return nil, fmt.Errorf("text recognition: %w", err)
		}
		reading = plate.NormalizeSpans(spans)
		log.Info().
			Int("spans", len(spans)).
			Str("reading", reading.Text).
			Str("code", string(reading.Code)).
			Msg("normalized plate reading")
	}

	// Wall clock captured once, immediately after recognition; used for both
	// display and artifact naming.
	entryTime := s.now()

	s.saveDebugArtifacts(log, img, box, crop)

	slipName := storage.SlipFilename(reading.Text, entryTime)
	slip := s.renderer.Render(reading.Text, entryTime, s.cfg.Slip.Fee)
	if err := s.store.SaveImage(slipName, slip); err != nil {
		log.Error().Err(err).Str("slip", slipName).Msg("failed to persist parking slip")
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	result := &plate.RecognitionResult{
		RequestID:     requestID,
		Box:           &box,
		Reading:       reading,
		EntryTime:     entryTime,
		Fee:           s.cfg.Slip.Fee,
		SlipFile:      slipName,
		AnnotatedFile: storage.AnnotatedLatestName,
	}
	if crop != nil {
		result.CropFile = storage.CropLatestName
	}

	if s.mirror != nil {
		result.SlipObjectURL = s.mirrorSlip(ctx, log, slipName, slip)
	}

	log.Info().
		Str("plate", reading.Text).
		Str("code", string(reading.Code)).
		Str("slip", slipName).
		Time("entry_time", entryTime).
		Msg("processed plate recognition request")

	return result, nil
}

// saveDebugArtifacts writes the annotated original and the cropped plate
// under their fixed names. Failures are logged and ignored: the artifacts
// are diagnostic only and concurrent overwrites are accepted.
func (s *PlateService) saveDebugArtifacts(log zerolog.Logger, img image.Image, box plate.BoundingBox, crop image.Image) {
	annotated := render.AnnotateBox(img, box)
	if err := s.store.SaveImage(storage.AnnotatedLatestName, annotated); err != nil {
		log.Warn().Err(err).Msg("failed to save annotated image")
	}
	if crop != nil {
		if err := s.store.SaveImage(storage.CropLatestName, crop); err != nil {
			log.Warn().Err(err).Msg("failed to save cropped plate image")
		}
	}
}

// mirrorSlip uploads the rendered slip to the optional object store. The
// local file stays canonical, so upload failures only log.
func (s *PlateService) mirrorSlip(ctx context.Context, log zerolog.Logger, name string, slip image.Image) string {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, slip, imaging.PNG); err != nil {
		log.Warn().Err(err).Msg("failed to encode slip for object storage")
		return ""
	}
	url, err := s.mirror.UploadSlip(ctx, name, buf.Bytes())
	if err != nil {
		log.Warn().Err(err).Str("slip", name).Msg("failed to mirror slip to object storage")
		return ""
	}
	log.Debug().Str("slip", name).Str("url", url).Msg("mirrored slip to object storage")
	return url
}
