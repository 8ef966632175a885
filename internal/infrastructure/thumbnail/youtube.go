package thumbnail

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"i4e-backend/internal/pkg/logger"

	"github.com/gocolly/colly/v2"
)

var ErrNoThumbnail = errors.New("no thumbnail found")

// YoutubeFetcher reads the og:image of a video page.
type YoutubeFetcher struct {
	timeout   time.Duration
	userAgent string
	log       *logger.Logger
}

func NewYoutubeFetcher(timeout time.Duration, log *logger.Logger) *YoutubeFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &YoutubeFetcher{
		timeout:   timeout,
		userAgent: "Mozilla/5.0 (compatible; i4e-career-library/1.0)",
		log:       log.With("service", "YoutubeFetcher"),
	}
}

func (f *YoutubeFetcher) Thumbnail(ctx context.Context, link string) (string, error) {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrNoThumbnail
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	c.SetRequestTimeout(f.timeout)

	var image string
	var reqErr error
	c.OnHTML(`meta[property="og:image"]`, func(e *colly.HTMLElement) {
		if image == "" {
			image = strings.TrimSpace(e.Attr("content"))
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := c.Visit(link); err != nil {
		reqErr = err
	}
	c.Wait()

	if image != "" {
		return image, nil
	}
	if id := VideoID(link); id != "" {
		f.log.Debug("og:image missing, using static thumbnail", "link", link, "err", reqErr)
		return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg", nil
	}
	if reqErr != nil {
		return "", reqErr
	}
	return "", ErrNoThumbnail
}

// VideoID extracts the id from watch, short, embed and youtu.be links.
func VideoID(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts" || parts[0] == "live") {
			return parts[1]
		}
	}
	return ""
}
