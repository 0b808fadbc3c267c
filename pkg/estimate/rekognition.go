package estimate

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"go.uber.org/zap"
)

// FaceDetector is the subset of the Rekognition client used here.
type FaceDetector interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Rekognition estimates ages with AWS Rekognition DetectFaces.
type Rekognition struct {
	client FaceDetector
	log    *zap.Logger
}

// NewRekognition wraps an existing client.
func NewRekognition(client FaceDetector, log *zap.Logger) *Rekognition {
	if log == nil {
		log = zap.NewNop()
	}
	return &Rekognition{client: client, log: log}
}

// NewRekognitionFromConfig loads the default AWS credential chain. An empty
// region defers to the environment and shared config.
func NewRekognitionFromConfig(ctx context.Context, region string, log *zap.Logger) (*Rekognition, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewRekognition(rekognition.NewFromConfig(cfg), log), nil
}

// EstimateAge uses the midpoint of the first face's age range.
func (r *Rekognition) EstimateAge(ctx context.Context, path string) (int, error) {
	img, err := Load(path)
	if err != nil {
		return 0, err
	}

	out, err := r.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: img.Data},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return 0, fmt.Errorf("rekognition detect faces %s: %w", path, err)
	}
	if len(out.FaceDetails) == 0 || out.FaceDetails[0].AgeRange == nil {
		return 0, fmt.Errorf("rekognition detect faces %s: %w", path, ErrNoFace)
	}

	ar := out.FaceDetails[0].AgeRange
	low, high := aws.ToInt32(ar.Low), aws.ToInt32(ar.High)
	age := roundAge(float64(low+high) / 2)

	r.log.Debug("rekognition estimate",
		zap.String("file", path),
		zap.Int("age", age),
		zap.Int32("age_low", low),
		zap.Int32("age_high", high),
		zap.Int("faces", len(out.FaceDetails)))
	return age, nil
}
