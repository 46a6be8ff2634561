package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

const dateLayout = "2006-01-02"

// parseDate accepts RFC 3339, a zone-less date-time or a bare date. A bare
// date means the start of that day, or its last instant when endOfDay is set.
func parseDate(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		if endOfDay {
			return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
		return d, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", value)
}

func optionalDate(q url.Values, key string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	value := q.Get(key)
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value, loc, endOfDay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}

func requiredDate(q url.Values, key string, loc *time.Location, endOfDay bool) (time.Time, error) {
	t, err := optionalDate(q, key, loc, endOfDay)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	return *t, nil
}

func optionalBool(q url.Values, key string) (*bool, error) {
	value := q.Get(key)
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", key)
	}
	return &b, nil
}

func optionalID(q url.Values, key string) (*int64, error) {
	value := q.Get(key)
	if value == "" {
		return nil, nil
	}
	id, err := parseID(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &id, nil
}

// idList accepts both repeated keys and comma separated values.
func idList(q url.Values, key string) ([]int64, error) {
	var ids []int64
	for _, value := range q[key] {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func optionalInt(q url.Values, key string, defaultValue int) (int, error) {
	value := q.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}
