package weather

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Client talks to the external weather lookup service. The service accepts a
// coordinate document and answers with the current conditions at that point:
//
//	request:  <coordinates><latitude>..</latitude><longitude>..</longitude></coordinates>
//	response: <weather>...<temperature>4</temperature><Unit>Celcius</Unit></weather>
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type coordinates struct {
	XMLName   xml.Name `xml:"coordinates"`
	Latitude  float64  `xml:"latitude"`
	Longitude float64  `xml:"longitude"`
}

type conditions struct {
	XMLName     xml.Name `xml:"weather"`
	Temperature string   `xml:"temperature"`
	Unit        string   `xml:"Unit"`
}

// Fetch returns a human-readable conditions string ("4 Celcius") for the
// given coordinates. Callers treat the lookup as best-effort.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (string, error) {
	body, err := xml.Marshal(coordinates{Latitude: lat, Longitude: lon})
	if err != nil {
		return "", fmt.Errorf("encode coordinates: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/weather", strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("weather service error: status %d: %s", resp.StatusCode, b)
	}

	var w conditions
	if err := xml.NewDecoder(resp.Body).Decode(&w); err != nil {
		return "", fmt.Errorf("decode weather response: %w", err)
	}
	if w.Temperature == "" || w.Unit == "" {
		return "", fmt.Errorf("weather response missing temperature or unit")
	}
	return w.Temperature + " " + w.Unit, nil
}
