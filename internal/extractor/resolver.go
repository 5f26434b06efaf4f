package extractor

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/sync/singleflight"
)

var ErrNoPlayableFormat = errors.New("no playable format found")

// Resolver turns a source id into a direct fetchable URL. Cache hits are
// served without touching the extraction service; concurrent misses for the
// same source id are coalesced into a single extraction call. Failures are
// returned to the caller and never cached.
type Resolver struct {
	client Client
	cache  *URLCache
	group  singleflight.Group
}

func NewResolver(client Client, cache *URLCache) *Resolver {
	return &Resolver{client: client, cache: cache}
}

func (r *Resolver) Resolve(ctx context.Context, sourceID string) (string, error) {
	if url, ok := r.cache.Get(sourceID); ok {
		return url, nil
	}

	v, err, _ := r.group.Do(sourceID, func() (any, error) {
		// A concurrent caller may have resolved while we waited for the key.
		if url, ok := r.cache.Get(sourceID); ok {
			return url, nil
		}

		info, err := r.client.Extract(ctx, sourceID)
		if err != nil {
			return nil, err
		}

		url := info.URL
		if url == "" {
			url = pickCompatibleFormat(info.Formats)
		}
		if url == "" {
			return nil, ErrNoPlayableFormat
		}

		log.Printf("locator_resolved source_id=%s", sourceID)
		r.cache.Put(sourceID, url)
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// pickCompatibleFormat scans the format list in reverse, favoring the
// higher-quality entries the service lists last, for the first progressive
// MP4/AVC stream that is not served through a manifest.
func pickCompatibleFormat(formats []Format) string {
	for i := len(formats) - 1; i >= 0; i-- {
		f := formats[i]
		if f.URL == "" || f.Ext != "mp4" {
			continue
		}
		if !strings.HasPrefix(f.VideoCodec, "avc") {
			continue
		}
		if strings.HasPrefix(f.Protocol, "m3u8") {
			continue
		}
		if strings.Contains(strings.ToLower(f.URL), "manifest") {
			continue
		}
		return f.URL
	}
	return ""
}
