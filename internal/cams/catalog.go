package cams

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var validate = validator.New()

// Catalog is the JSON document accepted by the bulk importer.
type Catalog struct {
	CategoryList []CatalogCategory `json:"categories" validate:"required,dive"`
}

type CatalogCategory struct {
	Title string       `json:"title" validate:"required"`
	Color string       `json:"color"`
	Cams  []CatalogCam `json:"cams" validate:"dive"`
}

type CatalogCam struct {
	Title           string `json:"title" validate:"required"`
	SubTitle        string `json:"subTitle"`
	URL             string `json:"url" validate:"required"`
	TitleColor      string `json:"titleColor"`
	SubTitleColor   string `json:"subTitleColor"`
	BackgroundColor string `json:"backgroundColor"`
	SpotID          string `json:"spotId"`
	Proxy           bool   `json:"proxy"`
}

// DecodeCatalog reads and validates a catalog document.
func DecodeCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// Categories converts the catalog into ordered categories ready for
// Repository.ReplaceCatalog. Cams sharing a URL share one slug, assigned
// the first time the URL is seen.
func (c Catalog) Categories() []Category {
	slugs := make(map[string]bool)
	byURL := make(map[string]Cam)

	out := make([]Category, 0, len(c.CategoryList))
	for i, cc := range c.CategoryList {
		cat := Category{
			Title: cc.Title,
			Color: cc.Color,
			Order: i,
			Cams:  make([]Cam, 0, len(cc.Cams)),
		}
		for _, in := range cc.Cams {
			cam, ok := byURL[in.URL]
			if !ok {
				cam = Cam{
					Slug:            UniqueSlug(Slugify(in.Title), slugs),
					Title:           in.Title,
					Subtitle:        in.SubTitle,
					URL:             in.URL,
					TitleColor:      orDefault(in.TitleColor, DefaultTitleColor),
					SubtitleColor:   orDefault(in.SubTitleColor, DefaultSubtitleColor),
					BackgroundColor: orDefault(in.BackgroundColor, DefaultBackgroundColor),
					SpotID:          strings.TrimSpace(in.SpotID),
					Proxy:           in.Proxy,
				}
				byURL[in.URL] = cam
			}
			cat.Cams = append(cat.Cams, cam)
		}
		out = append(out, cat)
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Slugify lowercases s, folds accents, drops anything that is not a
// letter, digit, space, underscore or hyphen, and joins words with hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || unicode.IsSpace(r):
			pendingSep = true
		}
	}
	return strings.Trim(b.String(), "-_")
}

// UniqueSlug returns slug, or slug-2, slug-3... if already taken, and
// records the result in taken.
func UniqueSlug(slug string, taken map[string]bool) string {
	if slug == "" {
		slug = "cam"
	}
	candidate := slug
	for n := 2; taken[candidate]; n++ {
		candidate = slug + "-" + strconv.Itoa(n)
	}
	taken[candidate] = true
	return candidate
}
