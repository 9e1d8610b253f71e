package device

import (
	"time"

	"github.com/beevik/ntp"
	"github.com/jonboulle/clockwork"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/syncutil"
	"github.com/sirupsen/logrus"
)

// NtpQuery returns the current UTC time according to server.
type NtpQuery func(server string) (time.Time, error)

func queryNtp(server string) (time.Time, error) {
	response, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: 5 * time.Second})
	if err != nil {
		return time.Time{}, err
	}
	if err = response.Validate(); err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(response.ClockOffset).UTC(), nil
}

// Clock keeps UTC time synchronized with an NTP server. Between
// synchronizations time is extrapolated with the monotonic clock.
type Clock struct {
	lock syncutil.RWMutex

	server       string
	syncInterval time.Duration
	clock        clockwork.Clock
	query        NtpQuery

	synced     bool
	syncedAt   time.Time
	syncedMono time.Time

	askDone chan bool
	done    chan bool
}

func NewClock(timeParam config.TimeParam) *Clock {
	return NewClockWithQuery(timeParam, clockwork.NewRealClock(), queryNtp)
}

func NewClockWithQuery(timeParam config.TimeParam, clock clockwork.Clock, query NtpQuery) *Clock {
	return &Clock{
		server:       timeParam.NtpServer,
		syncInterval: timeParam.SyncInterval,
		clock:        clock,
		query:        query,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
}

func (d *Clock) Start() {
	logrus.Infof("Start clock device")

	syncTicker := d.clock.NewTicker(d.syncInterval)

	go func() {
		d.sync()
		for loop := true; loop; {
			select {
			case <-syncTicker.Chan():
				d.sync()
			case <-d.askDone:
				loop = false
			}
		}
		syncTicker.Stop()
		d.done <- true
	}()
}

func (d *Clock) Stop() {
	logrus.Infof("Stop clock device")
	d.askDone <- true
	<-d.done
}

func (d *Clock) sync() {
	if d.server == "" {
		return
	}

	utc, err := d.query(d.server)
	if err != nil {
		logrus.Warnf("Unable to sync time with %s: %v", d.server, err)
		return
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	d.synced = true
	d.syncedAt = utc
	d.syncedMono = d.clock.Now()
	logrus.Debugf("Time synced with %s: %s", d.server, utc.Format(time.RFC3339))
}

// NowUTC never blocks on the network. Before the first successful sync it
// returns the system time.
func (d *Clock) NowUTC() time.Time {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if !d.synced {
		return d.clock.Now().UTC()
	}
	return d.syncedAt.Add(d.clock.Since(d.syncedMono)).UTC()
}

func (d *Clock) IsSynced() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.synced
}
