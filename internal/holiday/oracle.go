package holiday

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const dateLayout = "2006-01-02"

// Oracle caches whole holiday years per country and answers per-date
// queries. Entries are immutable once fetched, so concurrent readers racing
// to populate the same key is harmless (last write wins).
type Oracle struct {
	fetcher Fetcher
	cache   *cache.Cache
	ttl     time.Duration
}

// NewOracle wraps a Fetcher with a TTL cache keyed by (countryCode, year).
func NewOracle(fetcher Fetcher, ttl time.Duration) *Oracle {
	return &Oracle{
		fetcher: fetcher,
		cache:   cache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

// IsPublicHoliday reports whether date (its calendar day, evaluated in
// date's own location) is a public holiday in the given country. Fetch
// failures propagate; the caller decides how to surface them.
func (o *Oracle) IsPublicHoliday(ctx context.Context, date time.Time, countryCode string) (bool, error) {
	holidays, err := o.yearHolidays(ctx, date.Year(), countryCode)
	if err != nil {
		return false, err
	}

	day := date.Format(dateLayout)
	for _, h := range holidays {
		if h.Date != day {
			continue
		}
		for _, t := range h.Types {
			if strings.EqualFold(t, "Public") {
				return true, nil
			}
		}
	}
	return false, nil
}

func (o *Oracle) yearHolidays(ctx context.Context, year int, countryCode string) ([]Holiday, error) {
	key := fmt.Sprintf("%s:%d", countryCode, year)
	if v, found := o.cache.Get(key); found {
		return v.([]Holiday), nil
	}

	holidays, err := o.fetcher.FetchYear(ctx, year, countryCode)
	if err != nil {
		return nil, err
	}

	o.cache.Set(key, holidays, o.ttl)
	return holidays, nil
}
