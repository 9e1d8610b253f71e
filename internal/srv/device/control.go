package device

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/control"
	"github.com/jypelle/vekimatrix/internal/srv/event"
	"github.com/jypelle/vekimatrix/internal/syncutil"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	maxDatagramSize     = 2048
	limiterIdleDuration = 5 * time.Minute
)

type sourceLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Control listens for control datagrams and forwards decoded commands.
type Control struct {
	lock         syncutil.Mutex
	eventChannel chan event.ControlEvent

	param    config.ControlParam
	conn     net.PacketConn
	limiters map[string]*sourceLimiter

	askDone chan bool
	wg      sync.WaitGroup
}

func NewControl(param config.ControlParam) *Control {
	return &Control{
		eventChannel: make(chan event.ControlEvent, 16),
		param:        param,
		limiters:     make(map[string]*sourceLimiter),
		askDone:      make(chan bool),
	}
}

func (d *Control) Start() error {
	logrus.Infof("Start control device")

	conn, err := net.ListenPacket("udp", ":"+strconv.Itoa(d.param.UdpPort))
	if err != nil {
		return err
	}
	d.conn = conn
	logrus.Infof("Listening for control datagrams on %s", conn.LocalAddr())

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		buf := make([]byte, maxDatagramSize)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					break
				}
				logrus.Warnf("Unable to read control datagram: %v", err)
				continue
			}
			d.handle(buf[:n], addr)
		}
	}()

	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(limiterIdleDuration)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				d.evictIdleLimiters(now)
			case <-d.askDone:
				return
			}
		}
	}()
	return nil
}

func (d *Control) StopSendingEvent() {
	logrus.Infof("Stop control device")
	if d.conn == nil {
		return
	}
	d.conn.Close()
	close(d.askDone)
	d.wg.Wait()
}

func (d *Control) EventChannel() chan event.ControlEvent {
	return d.eventChannel
}

func (d *Control) LocalAddr() net.Addr {
	return d.conn.LocalAddr()
}

func (d *Control) handle(payload []byte, addr net.Addr) {
	source := hostOf(addr)
	if !d.allow(source) {
		logrus.Debugf("Dropped control datagram from %s: rate limited", source)
		return
	}

	ev, err := DecodeControlEvent(payload, source)
	if err != nil {
		if errors.Is(err, control.ErrShortPacket) {
			logrus.Debugf("Ignored control datagram from %s: %v", source, err)
		} else {
			logrus.Warnf("Rejected control datagram from %s: %v", source, err)
		}
		return
	}

	select {
	case d.eventChannel <- ev:
	default:
		logrus.Warnf("Dropped control datagram from %s: event loop busy", source)
	}
}

func (d *Control) allow(source string) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	now := time.Now()
	l, ok := d.limiters[source]
	if !ok {
		l = &sourceLimiter{limiter: rate.NewLimiter(rate.Limit(d.param.RateLimit), d.param.Burst)}
		d.limiters[source] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

// evictIdleLimiters forgets the sources silent for longer than limiterIdleDuration.
func (d *Control) evictIdleLimiters(now time.Time) {
	d.lock.Lock()
	defer d.lock.Unlock()

	for source, l := range d.limiters {
		if now.Sub(l.lastSeen) > limiterIdleDuration {
			delete(d.limiters, source)
			logrus.Debugf("Removed idle rate limiter of %s", source)
		}
	}
}

func (d *Control) limiterCount() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.limiters)
}

// DecodeControlEvent turns a raw control payload into an event for the loop.
func DecodeControlEvent(payload []byte, source string) (event.ControlEvent, error) {
	cmd, err := control.Decode(payload)
	if err != nil {
		return event.ControlEvent{}, err
	}
	logrus.Debugf("Decoded %s command from %s", cmd.Kind, source)
	switch cmd.Kind {
	case control.SettingCommand:
		return event.ControlEvent{Source: source, Data: event.ControlEventSettingData{
			ColorIndex:      cmd.ColorIndex,
			BrightnessLevel: cmd.BrightnessLevel,
		}}, nil
	default:
		return event.ControlEvent{Source: source, Data: event.ControlEventTextData{Text: cmd.Text}}, nil
	}
}

func hostOf(addr net.Addr) string {
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		return udpAddr.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
