package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/event"
	"github.com/jypelle/vekimatrix/internal/syncutil"
	"github.com/jypelle/vekimatrix/internal/version"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const weatherSentinel = "-"

var (
	ErrNoConnectivity  = errors.New("no network connectivity")
	ErrMissingField    = errors.New("missing field in weather response")
	ErrWeatherDisabled = errors.New("weather is disabled")
)

type WeatherSnapshot struct {
	Current       string
	Min           string
	Max           string
	LastFetchedAt time.Time
	LastSuccessAt time.Time
}

// Summary formats the snapshot as "cur/min/max".
func (s WeatherSnapshot) Summary() string {
	return s.Current + "/" + s.Min + "/" + s.Max
}

type weatherResponse struct {
	Main *struct {
		Temp    *float64 `json:"temp"`
		TempMin *float64 `json:"temp_min"`
		TempMax *float64 `json:"temp_max"`
	} `json:"main"`
}

// Weather polls an OpenWeatherMap compatible endpoint and keeps the last
// successful reading.
type Weather struct {
	lock         syncutil.RWMutex
	eventChannel chan event.WeatherEvent

	param        config.WeatherParam
	url          string
	clock        clockwork.Clock
	httpClient   *http.Client
	group        singleflight.Group
	connectivity func() bool

	snapshot WeatherSnapshot

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWeather(param config.WeatherParam, clock clockwork.Clock) *Weather {
	ctx, cancel := context.WithCancel(context.Background())
	return &Weather{
		eventChannel: make(chan event.WeatherEvent, 1),
		param:        param,
		url:          param.Url(),
		clock:        clock,
		httpClient:   &http.Client{Timeout: param.Timeout},
		connectivity: HasConnectivity,
		snapshot: WeatherSnapshot{
			Current: weatherSentinel,
			Min:     weatherSentinel,
			Max:     weatherSentinel,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (d *Weather) SetConnectivityCheck(check func() bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.connectivity = check
}

func (d *Weather) Start() {
	logrus.Infof("Start weather device")
}

// StopSendingEvent cancels the fetch in flight and waits for it.
func (d *Weather) StopSendingEvent() {
	logrus.Infof("Stop weather device")
	d.cancel()
	d.wg.Wait()
	d.httpClient.CloseIdleConnections()
}

func (d *Weather) EventChannel() chan event.WeatherEvent {
	return d.eventChannel
}

func (d *Weather) Snapshot() WeatherSnapshot {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.snapshot
}

func (d *Weather) Summary() string {
	return d.Snapshot().Summary()
}

// TriggerIfStale starts a background fetch when the interval has elapsed
// since the last attempt. The attempt time is recorded now, whatever the
// outcome. A fetch still running is joined instead of duplicated.
func (d *Weather) TriggerIfStale() bool {
	if !d.param.Enabled {
		return false
	}

	d.lock.Lock()
	now := d.clock.Now()
	if d.ctx.Err() != nil ||
		(!d.snapshot.LastFetchedAt.IsZero() && now.Sub(d.snapshot.LastFetchedAt) <= d.param.Interval) {
		d.lock.Unlock()
		return false
	}
	d.snapshot.LastFetchedAt = now
	d.wg.Add(1)
	d.lock.Unlock()

	go func() {
		defer d.wg.Done()

		summary, err := d.fetchShared(d.ctx)
		if err != nil {
			logrus.Warnf("Unable to fetch weather: %v", err)
		} else {
			logrus.Debugf("Weather fetched: %s", summary)
		}

		select {
		case d.eventChannel <- event.WeatherEvent{Data: event.WeatherEventFetchedData{Summary: summary, Err: err}}:
		case <-d.ctx.Done():
		}
	}()
	return true
}

// Refresh fetches now, regardless of the interval, and returns the summary
// shown afterwards. It shares the request of a fetch already running.
func (d *Weather) Refresh(ctx context.Context) (string, error) {
	if !d.param.Enabled {
		return d.Summary(), ErrWeatherDisabled
	}

	d.lock.Lock()
	d.snapshot.LastFetchedAt = d.clock.Now()
	d.lock.Unlock()

	return d.fetchShared(ctx)
}

// fetchShared runs at most one request at a time. The request itself is
// bound to the device lifetime so that a caller giving up does not cancel
// it for the others.
func (d *Weather) fetchShared(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return d.Summary(), err
	}
	resultChannel := d.group.DoChan("weather", func() (interface{}, error) {
		return d.Fetch(d.ctx)
	})
	select {
	case result := <-resultChannel:
		if result.Err != nil {
			return d.Summary(), result.Err
		}
		return result.Val.(string), nil
	case <-ctx.Done():
		return d.Summary(), ctx.Err()
	}
}

// Fetch queries the endpoint once and swaps the snapshot on success. On
// failure the snapshot is left untouched.
func (d *Weather) Fetch(ctx context.Context) (string, error) {
	d.lock.RLock()
	connectivity := d.connectivity
	d.lock.RUnlock()

	if !connectivity() {
		return "", ErrNoConnectivity
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return "", fmt.Errorf("unable to build weather request: %w", err)
	}
	req.Header.Set("User-Agent", version.AppVersion.UserAgent())
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("weather request failed: status %d", resp.StatusCode)
	}

	current, min, max, err := parseWeather(resp.Body)
	if err != nil {
		return "", err
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	d.snapshot.Current = current
	d.snapshot.Min = min
	d.snapshot.Max = max
	d.snapshot.LastSuccessAt = d.clock.Now()
	return d.snapshot.Summary(), nil
}

func parseWeather(r io.Reader) (current, min, max string, err error) {
	var response weatherResponse
	if err = json.NewDecoder(r).Decode(&response); err != nil {
		return "", "", "", fmt.Errorf("invalid weather response: %w", err)
	}

	var missing []string
	if response.Main == nil {
		missing = append(missing, "main")
	} else {
		if response.Main.Temp == nil {
			missing = append(missing, "main.temp")
		}
		if response.Main.TempMin == nil {
			missing = append(missing, "main.temp_min")
		}
		if response.Main.TempMax == nil {
			missing = append(missing, "main.temp_max")
		}
	}
	if len(missing) > 0 {
		return "", "", "", fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	return formatTemperature(*response.Main.Temp),
		formatTemperature(*response.Main.TempMin),
		formatTemperature(*response.Main.TempMax),
		nil
}

// formatTemperature rounds half away from zero. -0.4 prints as "0".
func formatTemperature(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return weatherSentinel
	}
	return strconv.Itoa(int(math.Round(v)))
}
