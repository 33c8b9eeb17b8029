package cams

import (
	"context"
	"time"
)

// Default colours applied when an imported cam leaves them blank.
const (
	DefaultTitleColor      = "#ffffff"
	DefaultSubtitleColor   = "#ffffff"
	DefaultBackgroundColor = "#000000"
)

// Cam is a single surf camera stream.
type Cam struct {
	ID              int64      `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subTitle"`
	URL             string     `json:"url"`
	TitleColor      string     `json:"titleColor"`
	SubtitleColor   string     `json:"subTitleColor"`
	BackgroundColor string     `json:"backgroundColor"`
	SpotID          string     `json:"spotId,omitempty"`
	Proxy           bool       `json:"proxy"`
	OfflineSince    *time.Time `json:"offlineSince,omitempty"`

	// Presentation fields, filled by WithLinks.
	DetailURL   string `json:"detailUrl,omitempty"`
	ImageName   string `json:"imageName,omitempty"`
	BulletColor string `json:"bulletColor,omitempty"`
}

// Online reports whether the last liveness sweep reached the stream.
func (c Cam) Online() bool {
	return c.OfflineSince == nil
}

// Image returns the provider logo shown next to the cam, keyed by subtitle.
func (c Cam) Image() string {
	switch c.Subtitle {
	case "Beachcam":
		return "beachcam.jpeg"
	case "Surfline":
		return "surfline.webp"
	default:
		return "unknown.png"
	}
}

// Bullet returns the provider colour, keyed by subtitle.
func (c Cam) Bullet() string {
	switch c.Subtitle {
	case "Beachcam":
		return "yellow"
	case "Surfline":
		return "#15a0eb"
	default:
		return "gray"
	}
}

// WithLinks returns c with its presentation fields set.
func (c Cam) WithLinks(detailURL string) Cam {
	c.DetailURL = detailURL
	c.ImageName = c.Image()
	c.BulletColor = c.Bullet()
	return c
}

// Category groups cams; Cams are in their per-category order.
type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
	Order int    `json:"order"`
	Cams  []Cam  `json:"cams"`
}

// Repository is the contract the cam stores must satisfy.
type Repository interface {
	// ListCategories returns categories by order, each with its ordered cams.
	ListCategories(ctx context.Context) ([]Category, error)
	ListCams(ctx context.Context) ([]Cam, error)
	GetCam(ctx context.Context, id int64) (Cam, error)
	GetCamBySlug(ctx context.Context, slug string) (Cam, error)
	// UpdateOfflineSince persists OfflineSince for every given cam.
	UpdateOfflineSince(ctx context.Context, cams []Cam) error
	// ReplaceCatalog drops all cams and categories and stores the given
	// ones. Cams are identified by URL; a URL listed under several
	// categories is stored once.
	ReplaceCatalog(ctx context.Context, categories []Category) error
}

// RelatedCams returns the cams sharing a category with cam, walking
// categories and their cams in order and skipping repeats. cam itself is
// included, in its listed position.
func RelatedCams(categories []Category, cam Cam) []Cam {
	var related []Cam
	seen := make(map[int64]bool)
	for _, cat := range categories {
		member := false
		for _, c := range cat.Cams {
			if c.ID == cam.ID {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		for _, c := range cat.Cams {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			related = append(related, c)
		}
	}
	return related
}
