// Package geocode turns coordinates picked on the store map into a street
// address.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	log       *logrus.Entry
}

func New(baseURL, userAgent string, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log.WithField("component", "geocode"),
	}
}

type Place struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Latitude    float64           `json:"-"`
	Longitude   float64           `json:"-"`
}

// Reverse looks up the address at lat/lon. Any failure yields nil.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) *Place {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		c.log.WithError(err).Warn("failed to build reverse geocoding request")
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("reverse geocoding failed")
		return nil
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		c.log.WithField("status", res.StatusCode).Warn("reverse geocoding failed")
		return nil
	}

	var p Place
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil || p.DisplayName == "" {
		c.log.WithError(err).Warn("reverse geocoding returned no address")
		return nil
	}
	p.Latitude, p.Longitude = lat, lon
	return &p
}
