package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/projectklase/comunika-cards/cardengine/database/models"
)

// SpacesService stores card artwork on DigitalOcean Spaces (S3 API).
type SpacesService struct {
	client   *s3.Client
	bucket   string
	region   string
	CardRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, cardRoot string) (*SpacesService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &SpacesService{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		region:   region,
		CardRoot: strings.TrimPrefix(cardRoot, "/"),
	}, nil
}

// CardImagePath is where a card's artwork lives inside the bucket:
// <root>/<category>/<id>_<slug>.jpg
func (s *SpacesService) CardImagePath(card *models.Card) string {
	return fmt.Sprintf("%s/%s/%d_%s.jpg",
		s.CardRoot,
		strings.ToLower(string(card.Category)),
		card.ID,
		slugify(card.Name),
	)
}

// CardImageURL is the public CDN URL for a card's artwork.
func (s *SpacesService) CardImageURL(card *models.Card) string {
	return fmt.Sprintf("https://%s.%s.cdn.digitaloceanspaces.com/%s",
		s.bucket, s.region, s.CardImagePath(card))
}

// UploadCardImage stores the artwork bytes for a card.
func (s *SpacesService) UploadCardImage(ctx context.Context, card *models.Card, image []byte) error {
	key := s.CardImagePath(card)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(image),
		ContentType: aws.String("image/jpeg"),
		ACL:         "public-read",
	})
	if err != nil {
		return fmt.Errorf("failed to upload card image %s: %w", key, err)
	}
	return nil
}

// DeleteCardImage removes the artwork for a card. Missing objects are
// not an error; S3 deletes are idempotent.
func (s *SpacesService) DeleteCardImage(ctx context.Context, card *models.Card) error {
	key := s.CardImagePath(card)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete card image %s: %w", key, err)
	}
	return nil
}

func (s *SpacesService) GetBucket() string {
	return s.bucket
}

func (s *SpacesService) GetRegion() string {
	return s.region
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		}
		return -1
	}, slug)
	return strings.Trim(slug, "_")
}
