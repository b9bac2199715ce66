package gcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/maatchaa/maatchaa-backend/internal/pkg/errors"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// Vision annotates video thumbnails.
type Vision interface {
	AnnotateImageURI(ctx context.Context, uri string) (*ImageAnnotation, error)
	Close() error
}

type Annotation struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type ImageAnnotation struct {
	Labels  []Annotation `json:"labels,omitempty"`
	Objects []Annotation `json:"objects,omitempty"`
	// Mean brightness of the dominant colors in [0,1]; -1 when unknown.
	Brightness float64 `json:"brightness"`
}

type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

type visionService struct {
	log       *logger.Logger
	client    annotator
	maxLabels int32
}

func NewVision(ctx context.Context, log *logger.Logger, opts ...option.ClientOption) (Vision, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(opts) == 0 {
		opts = ClientOptionsFromEnv()
	}
	vClient, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return newVisionService(log, vClient), nil
}

func newVisionService(log *logger.Logger, c annotator) *visionService {
	return &visionService{log: log.With("service", "gcp.Vision"), client: c, maxLabels: 15}
}

func (s *visionService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *visionService) AnnotateImageURI(ctx context.Context, uri string) (*ImageAnnotation, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, apperrors.ErrInvalidArgument
	}
	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Source: &visionpb.ImageSource{ImageUri: uri}},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: s.maxLabels},
			{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: s.maxLabels},
			{Type: visionpb.Feature_IMAGE_PROPERTIES},
		},
	}
	resp, err := s.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{req},
	})
	if err != nil {
		if status.Code(err) == codes.ResourceExhausted {
			return nil, fmt.Errorf("%w: vision: %v", apperrors.ErrRateLimited, err)
		}
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &ImageAnnotation{Brightness: -1}, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		if codes.Code(r0.Error.Code) == codes.ResourceExhausted {
			return nil, fmt.Errorf("%w: vision: %s", apperrors.ErrRateLimited, r0.Error.Message)
		}
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	out := &ImageAnnotation{Brightness: -1}
	for _, l := range r0.LabelAnnotations {
		if l != nil && l.Description != "" {
			out.Labels = append(out.Labels, Annotation{Name: strings.ToLower(l.Description), Score: float64(l.Score)})
		}
	}
	for _, o := range r0.LocalizedObjectAnnotations {
		if o != nil && o.Name != "" {
			out.Objects = append(out.Objects, Annotation{Name: strings.ToLower(o.Name), Score: float64(o.Score)})
		}
	}
	sort.SliceStable(out.Labels, func(i, j int) bool { return out.Labels[i].Score > out.Labels[j].Score })
	sort.SliceStable(out.Objects, func(i, j int) bool { return out.Objects[i].Score > out.Objects[j].Score })

	if props := r0.ImagePropertiesAnnotation; props != nil && props.DominantColors != nil {
		var sum, weight float64
		for _, c := range props.DominantColors.Colors {
			if c == nil || c.Color == nil {
				continue
			}
			lum := (0.2126*float64(c.Color.Red) + 0.7152*float64(c.Color.Green) + 0.0722*float64(c.Color.Blue)) / 255
			w := float64(c.PixelFraction)
			sum += lum * w
			weight += w
		}
		if weight > 0 {
			out.Brightness = sum / weight
		}
	}
	return out, nil
}
